package model

// Decorator adjusts a freshly loaded schema before the component publishes
// it to renderers.
type Decorator interface {
	Decorate(*Schema) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Schema) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(schema *Schema) error {
	return fn(schema)
}

// DefaultName fills ComponentName when the payload left it empty.
func DefaultName(name string) Decorator {
	return DecoratorFunc(func(schema *Schema) error {
		if schema != nil && schema.ComponentName == "" {
			schema.ComponentName = name
		}
		return nil
	})
}
