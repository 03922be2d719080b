// Package stiletto is a reflection-based dependency injection container for Go 1.25+.
//
// Services are registered as bindings from a service type to an implementation
// type, a factory or a value. Implementation types are built through the
// constructors declared for them with Describe; the container picks the
// constructor it can satisfy with the most dependencies.
//
// # Quick Start
//
//	c := stiletto.New()
//
//	stiletto.Describe[*Server](c,
//	    stiletto.Ctor(NewServer),
//	    stiletto.Ctor(NewServerWithCache),
//	)
//	stiletto.BindValue(c, &Config{Port: 8080})
//	stiletto.BindSelf[*Server](c, stiletto.AsSingleton())
//
//	srv, err := stiletto.Resolve[*Server](c)
//
// # Constructors
//
// A constructor is a function returning the type, optionally with an error:
//
//	func NewServer(cfg *Config) *Server
//	func NewServerWithCache(cfg *Config, cache Cache) (*Server, error)
//
// When several constructors are declared, the container ranks the ones whose
// parameters can all be satisfied: first by the number of parameters without
// a default, then by the total number of parameters. Equal ranks are an error
// unless WithTieBreak(TieBreakDeclarationOrder) is set.
//
// Constructor options:
//
//	stiletto.Ctor(fn, stiletto.Inject())            // always use this constructor
//	stiletto.Ctor(fn, stiletto.Key(1, "replica"))   // parameter 1 uses the "replica" binding
//	stiletto.Ctor(fn, stiletto.Default(2, nil))     // parameter 2 may be left unregistered
//	stiletto.Ctor(fn, stiletto.Named("NewServer"))  // name used in errors and logs
//
// A slice parameter receives every binding of its element type in
// registration order, or an empty slice.
//
// # Bindings
//
//	stiletto.Bind[Cache, *RedisCache](c)                    // interface to implementation
//	stiletto.BindSelf[*Server](c)                            // concrete type
//	stiletto.BindFactory(c, func(ctx context.Context, r stiletto.Resolver) (*DB, error) {
//	    cfg, err := stiletto.ResolveCtx[*Config](ctx, r)
//	    ...
//	})
//	stiletto.BindValue(c, &Config{})
//
// Bindings are Transient unless AsSingleton or WithDefaultLifetime says
// otherwise. Keyed bindings are separate services:
//
//	stiletto.Bind[Cache, *RedisCache](c, stiletto.WithKey("session"))
//	cache, err := stiletto.ResolveKeyed[Cache](c, "session")
//
// Registering the same service twice adds an implementation. Resolve then
// fails with an ambiguous binding error, while ResolveAll returns both.
//
// # Validation
//
//	err := c.Validate()     // selection errors, ambiguous dependencies, cycles
//	err := c.WarmUp(ctx)    // Validate, then build every singleton
//	c.Freeze()              // reject further registrations
//
// # Configuration
//
//	cfg, err := stiletto.LoadConfig("stiletto.yaml", ".env")
//	c := stiletto.New(stiletto.WithConfig(cfg), stiletto.WithLogger(logger))
//
// # Modules
//
//	var Storage = stiletto.NewModule("storage")
//	stiletto.ModuleDescribe[*DB](Storage, stiletto.Ctor(NewDB))
//	stiletto.ModuleBindSelf[*DB](Storage, stiletto.AsSingleton())
//
//	err := c.Apply(Storage)
//
// # Debug Visualization
//
//	c.PrintGraph()     // ASCII to stdout
//	c.PrintGraphDOT()  // Graphviz DOT to stdout
//	info := c.Graph()
package stiletto
