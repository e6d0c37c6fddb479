package inject

import (
	"periph.io/x/conn/v3/gpio"
)

// GPIOPin is an injected periph gpio.PinIO for exercising the bus recovery
// and pin init sequences.
type GPIOPin struct {
	gpio.PinIO
	InFunc   func(pull gpio.Pull, edge gpio.Edge) error
	OutFunc  func(l gpio.Level) error
	ReadFunc func() gpio.Level
}

// Name returns a fixed fake name.
func (p *GPIOPin) Name() string {
	return "inject"
}

// In calls the injected In or the real version.
func (p *GPIOPin) In(pull gpio.Pull, edge gpio.Edge) error {
	if p.InFunc == nil {
		return p.PinIO.In(pull, edge)
	}
	return p.InFunc(pull, edge)
}

// Out calls the injected Out or the real version.
func (p *GPIOPin) Out(l gpio.Level) error {
	if p.OutFunc == nil {
		return p.PinIO.Out(l)
	}
	return p.OutFunc(l)
}

// Read calls the injected Read or the real version.
func (p *GPIOPin) Read() gpio.Level {
	if p.ReadFunc == nil {
		return p.PinIO.Read()
	}
	return p.ReadFunc()
}
