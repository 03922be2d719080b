package stiletto

// Module groups registrations so they can be applied to a container in one step.
type Module struct {
	name       string
	steps      []registration
	submodules []*Module
}

type registration struct {
	register func(c *Container) error
}

func NewModule(name string) *Module {
	return &Module{
		name: name,
	}
}

func (m *Module) Name() string {
	return m.name
}

// Include adds a submodule. Submodules are applied before the module's own registrations.
func (m *Module) Include(submodule *Module) *Module {
	m.submodules = append(m.submodules, submodule)
	return m
}

func (m *Module) add(register func(c *Container) error) *Module {
	m.steps = append(m.steps, registration{register: register})
	return m
}

func (m *Module) apply(c *Container) error {
	for _, sub := range m.submodules {
		if err := sub.apply(c); err != nil {
			return err
		}
	}

	for _, step := range m.steps {
		if err := step.register(c); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) Apply(modules ...*Module) error {
	for _, m := range modules {
		if err := m.apply(c); err != nil {
			return errModuleApplyFailed(m.name, err)
		}
	}
	return nil
}

func ModuleDescribe[T any](m *Module, ctors ...CtorSpec) *Module {
	return m.add(func(c *Container) error {
		return Describe[T](c, ctors...)
	})
}

func ModuleBind[S, I any](m *Module, opts ...BindOption) *Module {
	return m.add(func(c *Container) error {
		return Bind[S, I](c, opts...)
	})
}

func ModuleBindSelf[T any](m *Module, opts ...BindOption) *Module {
	return m.add(func(c *Container) error {
		return BindSelf[T](c, opts...)
	})
}

func ModuleBindFactory[T any](m *Module, factory Factory[T], opts ...BindOption) *Module {
	return m.add(func(c *Container) error {
		return BindFactory(c, factory, opts...)
	})
}

func ModuleBindValue[T any](m *Module, value T, opts ...BindOption) *Module {
	return m.add(func(c *Container) error {
		return BindValue(c, value, opts...)
	})
}
