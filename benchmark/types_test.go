package benchmark

import "github.com/danpasecinic/stiletto"

type Config struct {
	Host string
	Port int
}

type Logger struct {
	Level string
}

type Database struct {
	Config *Config
	Logger *Logger
}

type Cache struct {
	Logger *Logger
}

type Repository struct {
	DB    *Database
	Cache *Cache
}

type Service struct {
	Repo   *Repository
	Logger *Logger
}

type Handler interface {
	Route() string
}

type route struct {
	path string
}

func (r *route) Route() string {
	return r.path
}

func NewConfig() *Config { return &Config{Host: "localhost", Port: 8080} }
func NewLogger() *Logger { return &Logger{Level: "info"} }
func NewDatabase(cfg *Config, log *Logger) *Database { return &Database{Config: cfg, Logger: log} }
func NewCache(log *Logger) *Cache { return &Cache{Logger: log} }
func NewRepository(db *Database, cache *Cache) *Repository { return &Repository{DB: db, Cache: cache} }
func NewService(repo *Repository, log *Logger) *Service { return &Service{Repo: repo, Logger: log} }

// describeChain declares constructors for the Config..Service chain.
func describeChain(c *stiletto.Container) {
	stiletto.MustDescribe[*Config](c, stiletto.Ctor(NewConfig))
	stiletto.MustDescribe[*Logger](c, stiletto.Ctor(NewLogger))
	stiletto.MustDescribe[*Database](c, stiletto.Ctor(NewDatabase))
	stiletto.MustDescribe[*Cache](c, stiletto.Ctor(NewCache))
	stiletto.MustDescribe[*Repository](c, stiletto.Ctor(NewRepository))
	stiletto.MustDescribe[*Service](c, stiletto.Ctor(NewService))
}

func bindChain(c *stiletto.Container, opts ...stiletto.BindOption) {
	_ = stiletto.BindSelf[*Config](c, opts...)
	_ = stiletto.BindSelf[*Logger](c, opts...)
	_ = stiletto.BindSelf[*Database](c, opts...)
	_ = stiletto.BindSelf[*Cache](c, opts...)
	_ = stiletto.BindSelf[*Repository](c, opts...)
	_ = stiletto.BindSelf[*Service](c, opts...)
}
