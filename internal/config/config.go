package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Nav holds all configuration for the navigation server.
type Nav struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Grid     GridConfig     `yaml:"grid"`
	Agents   AgentsConfig   `yaml:"agents"`
	Planner  PlannerConfig  `yaml:"planner"`
}

// HTTPConfig holds the API listener address.
type HTTPConfig struct {
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`
}

// Addr returns host:port for the listener.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.BindAddress, h.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"` // load layers from the database instead of layers_dir
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// GridConfig describes the world grid and where its layers come from.
type GridConfig struct {
	CellSize  float64 `yaml:"cell_size"`
	OriginX   float64 `yaml:"origin_x"`
	OriginY   float64 `yaml:"origin_y"`
	LayersDir string  `yaml:"layers_dir"` // directory of .grid files
	MapName   string  `yaml:"map_name"`   // map to load when database is enabled
}

// AgentsConfig holds follower defaults and the agents spawned at startup.
type AgentsConfig struct {
	Speed          float64       `yaml:"speed"`           // units per second
	Tolerance      float64       `yaml:"tolerance"`       // waypoint arrival distance
	Strategy       string        `yaml:"strategy"`        // astar or thetastar
	ReplanInterval time.Duration `yaml:"replan_interval"` // chaser re-plan period
	TickInterval   time.Duration `yaml:"tick_interval"`

	Initial []AgentEntry `yaml:"initial"`
}

// AgentEntry is an agent created at startup. If Chase is set the agent
// follows the agent with that id.
type AgentEntry struct {
	ID    string  `yaml:"id"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Chase string  `yaml:"chase"`
}

// PlannerConfig holds path planner settings.
type PlannerConfig struct {
	CacheSize       int    `yaml:"cache_size"`
	Workers         int    `yaml:"workers"` // 0 = GOMAXPROCS
	DefaultStrategy string `yaml:"default_strategy"`
}

// DefaultNav returns Nav config with sensible defaults.
func DefaultNav() Nav {
	return Nav{
		LogLevel: "info",
		HTTP: HTTPConfig{
			BindAddress: "0.0.0.0",
			Port:        8080,
		},
		Database: DatabaseConfig{
			Enabled:  false,
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gridnav",
			Password: "gridnav",
			DBName:   "gridnav",
			SSLMode:  "disable",
		},
		Grid: GridConfig{
			CellSize:  1,
			LayersDir: "maps",
			MapName:   "default",
		},
		Agents: AgentsConfig{
			Speed:          5,
			Tolerance:      0.1,
			Strategy:       "thetastar",
			ReplanInterval: 500 * time.Millisecond,
			TickInterval:   50 * time.Millisecond,
		},
		Planner: PlannerConfig{
			CacheSize:       4096,
			DefaultStrategy: "astar",
		},
	}
}

// LoadNav loads navigation server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadNav(path string) (Nav, error) {
	cfg := DefaultNav()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
