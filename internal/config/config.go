package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/littbk/rpg-battle/internal/constants"
	"github.com/littbk/rpg-battle/internal/game"
	"github.com/littbk/rpg-battle/internal/keys"
)

const defaultStreamInterval = 2 * time.Second

type combatantEntry struct {
	Name           string  `yaml:"name"`
	ControllerID   string  `yaml:"controller_id"`
	ControllerName string  `yaml:"controller_name"`
	HPMax          int     `yaml:"hp_max"`
	HPCurrent      *int    `yaml:"hp_current"`
	EnergyMax      int     `yaml:"energy_max"`
	EnergyCurrent  *int    `yaml:"energy_current"`
	ActionPoints   float64 `yaml:"action_points"`
	InitiativeStep int     `yaml:"initiative_step"`
	Active         bool    `yaml:"active"`
	BattlerID      string  `yaml:"battler_id"`
	LinkedName     string  `yaml:"linked_name"`
	Money          int     `yaml:"money"`
	LifeDice       string  `yaml:"life_dice"`
}

// toCombatant converts an entry; omitted current pools start full.
func (e combatantEntry) toCombatant() game.Combatant {
	c := game.Combatant{
		Name:           strings.TrimSpace(e.Name),
		ControllerID:   e.ControllerID,
		ControllerName: e.ControllerName,
		HPMax:          e.HPMax,
		HPCurrent:      e.HPMax,
		EnergyMax:      e.EnergyMax,
		EnergyCurrent:  e.EnergyMax,
		ActionPoints:   e.ActionPoints,
		InitiativeStep: e.InitiativeStep,
		Active:         e.Active,
		BattlerID:      e.BattlerID,
		LinkedName:     e.LinkedName,
		Money:          e.Money,
		LifeDice:       e.LifeDice,
	}
	if e.HPCurrent != nil {
		c.HPCurrent = *e.HPCurrent
	}
	if e.EnergyCurrent != nil {
		c.EnergyCurrent = *e.EnergyCurrent
	}
	return c
}

type rawConfig struct {
	Server *struct {
		Address        string   `yaml:"address"`
		CORSOrigins    []string `yaml:"cors_origins"`
		StreamInterval string   `yaml:"stream_interval"`
	} `yaml:"server"`
	Database   string `yaml:"database"`
	ProfileDir string `yaml:"profile_dir"`
	// Template seeds every combatant created through the API before the
	// caller's initial fields are applied.
	Template       combatantEntry   `yaml:"combatant_template"`
	SeedCombatants []combatantEntry `yaml:"seed_combatants"`
}

// envOverrides are read after the file and win over it when set.
type envOverrides struct {
	ServerAddress       string `env:"RPG_BATTLE_ADDR"`
	Database            string `env:"RPG_BATTLE_DB"`
	ProfileDir          string `env:"RPG_BATTLE_PROFILE_DIR"`
	DiscordClientID     string `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET"`
	ClientURL           string `env:"CLIENT_URL"`
}

// DiscordOAuth holds the credentials used by the token relay. Empty values
// disable the relay.
type DiscordOAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether the relay has credentials to exchange codes.
func (d DiscordOAuth) Enabled() bool {
	return d.ClientID != "" && d.ClientSecret != ""
}

// LoadedConfig is the resolved server configuration.
type LoadedConfig struct {
	ServerAddress  string
	DatabasePath   string
	ProfileDir     string
	CORSOrigins    []string
	StreamInterval time.Duration
	Template       game.Combatant
	SeedCombatants []game.Combatant
	Discord        DiscordOAuth
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none
// are given) into the process environment. Missing files are ignored and
// variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads the YAML file at path, applies environment overrides and
// validates the result. A missing file yields the defaults.
func LoadConfig(path string) (*LoadedConfig, error) {
	var rc rawConfig
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(b, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg := &LoadedConfig{
		ServerAddress:  constants.DefaultServerAddress,
		DatabasePath:   constants.DefaultDatabasePath,
		ProfileDir:     strings.TrimSpace(rc.ProfileDir),
		StreamInterval: defaultStreamInterval,
		Template:       rc.Template.toCombatant(),
		Discord: DiscordOAuth{
			ClientID:     ov.DiscordClientID,
			ClientSecret: ov.DiscordClientSecret,
			RedirectURL:  ov.ClientURL,
		},
	}
	cfg.Template.Name = ""
	if rc.Database != "" {
		cfg.DatabasePath = rc.Database
	}
	if rc.Server != nil {
		if rc.Server.Address != "" {
			cfg.ServerAddress = rc.Server.Address
		}
		cfg.CORSOrigins = append(cfg.CORSOrigins, rc.Server.CORSOrigins...)
		if s := strings.TrimSpace(rc.Server.StreamInterval); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("config file %s: invalid stream_interval %q: %w", path, s, err)
			}
			if d <= 0 {
				return nil, fmt.Errorf("config file %s: stream_interval must be positive", path)
			}
			cfg.StreamInterval = d
		}
	}
	if ov.ServerAddress != "" {
		cfg.ServerAddress = ov.ServerAddress
	}
	if ov.Database != "" {
		cfg.DatabasePath = ov.Database
	}
	if ov.ProfileDir != "" {
		cfg.ProfileDir = ov.ProfileDir
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{constants.DefaultLocalOrigin}
	}
	if ov.ClientURL != "" {
		cfg.CORSOrigins = append(cfg.CORSOrigins, ov.ClientURL)
	}

	if cfg.Template.HPMax < 0 || cfg.Template.EnergyMax < 0 {
		return nil, fmt.Errorf("config file %s: combatant_template maxima must not be negative", path)
	}

	// Seed names must be present and unique after case folding, the same
	// rule the store enforces at runtime.
	seen := make(map[string]struct{}, len(rc.SeedCombatants))
	for _, e := range rc.SeedCombatants {
		c := e.toCombatant()
		k := keys.NameKey(c.Name)
		if k == "" {
			return nil, fmt.Errorf("config file %s: seed combatant missing 'name'", path)
		}
		if _, exists := seen[k]; exists {
			return nil, fmt.Errorf("config file %s: duplicate seed combatant '%s'", path, c.Name)
		}
		seen[k] = struct{}{}
		cfg.SeedCombatants = append(cfg.SeedCombatants, c)
	}
	return cfg, nil
}
