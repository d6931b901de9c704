package evidence

import "sync"

// MemoryStep is a step captured by Memory.
type MemoryStep struct {
	Name        string
	Err         error
	Steps       []*MemoryStep
	Attachments []MemoryAttachment
}

// MemoryAttachment is an attachment captured by Memory.
type MemoryAttachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// Memory is a Recorder that keeps everything in memory. It backs dry runs
// and tests.
type Memory struct {
	mu          sync.Mutex
	Steps       []*MemoryStep
	Attachments []MemoryAttachment
	stack       []*MemoryStep
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Step implements Recorder.
func (m *Memory) Step(name string, fn func() error) error {
	m.mu.Lock()
	step := &MemoryStep{Name: name}
	if n := len(m.stack); n > 0 {
		parent := m.stack[n-1]
		parent.Steps = append(parent.Steps, step)
	} else {
		m.Steps = append(m.Steps, step)
	}
	m.stack = append(m.stack, step)
	m.mu.Unlock()

	err := fn()

	m.mu.Lock()
	step.Err = err
	m.stack = m.stack[:len(m.stack)-1]
	m.mu.Unlock()
	return err
}

// Attach implements Recorder.
func (m *Memory) Attach(name, mediaType string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := MemoryAttachment{Name: name, MediaType: mediaType, Data: append([]byte(nil), data...)}
	if n := len(m.stack); n > 0 {
		m.stack[n-1].Attachments = append(m.stack[n-1].Attachments, a)
		return
	}
	m.Attachments = append(m.Attachments, a)
}

// AllAttachments returns every attachment, depth-first in recording order.
func (m *Memory) AllAttachments() []MemoryAttachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]MemoryAttachment(nil), m.Attachments...)
	var walk func([]*MemoryStep)
	walk = func(steps []*MemoryStep) {
		for _, s := range steps {
			out = append(out, s.Attachments...)
			walk(s.Steps)
		}
	}
	walk(m.Steps)
	return out
}

// Attachment returns the first attachment with the given name.
func (m *Memory) Attachment(name string) (MemoryAttachment, bool) {
	for _, a := range m.AllAttachments() {
		if a.Name == name {
			return a, true
		}
	}
	return MemoryAttachment{}, false
}

// StepNames returns the names of the top-level steps in order.
func (m *Memory) StepNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.Steps))
	for i, s := range m.Steps {
		names[i] = s.Name
	}
	return names
}
