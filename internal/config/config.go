// Package config 提供配置管理
package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/paiban/paihu/pkg/assigner"
	"github.com/paiban/paihu/pkg/assigner/eligibility"
	"github.com/paiban/paihu/pkg/assigner/objective"
	"github.com/paiban/paihu/pkg/assigner/solver"
	"github.com/paiban/paihu/pkg/errors"
	"github.com/paiban/paihu/pkg/logger"
)

// Config 应用配置
type Config struct {
	App      AppConfig      `yaml:"app"`
	Log      logger.Config  `yaml:"log"`
	Assigner AssignerConfig `yaml:"assigner"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name string `yaml:"name"`
	Env  string `yaml:"env"`
}

// AssignerConfig 分配引擎配置
// 阈值表、预算等都是运营可调项，改配置即可生效，无需改代码
type AssignerConfig struct {
	DeadlineSeconds  float64                       `yaml:"deadline_seconds"`
	MaxNodes         int64                         `yaml:"max_nodes"`
	Workers          int                           `yaml:"workers"`
	MaxPatients      int                           `yaml:"max_patients"`
	IVLoadLimit      int                           `yaml:"iv_load_limit"`
	SkillThresholds  []eligibility.SkillThreshold  `yaml:"skill_thresholds"`
	VesicantMinSkill int                           `yaml:"vesicant_min_skill"`
	SkillScaleMax    int                           `yaml:"skill_scale_max"`
	AcuityScaleMax   int                           `yaml:"acuity_scale_max"`
	BalanceWeight    float64                       `yaml:"balance_weight"`
	ContinuityWeight float64                       `yaml:"continuity_weight"`
}

// Default 返回默认配置
func Default() *Config {
	opts := assigner.DefaultOptions()
	return &Config{
		App: AppConfig{
			Name: "paihu",
			Env:  "development",
		},
		Log: logger.DefaultConfig(),
		Assigner: AssignerConfig{
			DeadlineSeconds:  opts.Solver.Deadline.Seconds(),
			MaxNodes:         opts.Solver.MaxNodes,
			Workers:          opts.Solver.Workers,
			MaxPatients:      opts.MaxPatients,
			IVLoadLimit:      opts.IVLoadLimit,
			SkillThresholds:  opts.Rules.SkillThresholds,
			VesicantMinSkill: opts.Rules.VesicantMinSkill,
			SkillScaleMax:    opts.Rules.SkillScaleMax,
			AcuityScaleMax:   opts.Rules.AcuityScaleMax,
			BalanceWeight:    opts.Weights.Balance,
			ContinuityWeight: opts.Weights.Continuity,
		},
	}
}

// Load 从环境变量加载配置（默认值基础上覆盖）
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// LoadFile 从YAML文件加载配置，环境变量优先级更高
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "读取配置文件失败")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "解析配置文件失败")
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv 应用环境变量覆盖
func (c *Config) applyEnv() {
	c.App.Name = getEnv("APP_NAME", c.App.Name)
	c.App.Env = getEnv("APP_ENV", c.App.Env)
	c.Log.Level = getEnv("APP_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("APP_LOG_FORMAT", c.Log.Format)

	c.Assigner.DeadlineSeconds = getEnvFloat("ASSIGNER_DEADLINE_SECONDS", c.Assigner.DeadlineSeconds)
	c.Assigner.Workers = getEnvInt("ASSIGNER_WORKERS", c.Assigner.Workers)
	c.Assigner.MaxPatients = getEnvInt("ASSIGNER_MAX_PATIENTS", c.Assigner.MaxPatients)
	c.Assigner.IVLoadLimit = getEnvInt("ASSIGNER_IV_LOAD_LIMIT", c.Assigner.IVLoadLimit)
	c.Assigner.VesicantMinSkill = getEnvInt("ASSIGNER_VESICANT_MIN_SKILL", c.Assigner.VesicantMinSkill)
}

// Options 转换为分配引擎选项
func (c *AssignerConfig) Options() assigner.Options {
	return assigner.Options{
		Rules: eligibility.Rules{
			SkillThresholds:  c.SkillThresholds,
			VesicantMinSkill: c.VesicantMinSkill,
			SkillScaleMax:    c.SkillScaleMax,
			AcuityScaleMax:   c.AcuityScaleMax,
		},
		Weights: objective.Weights{
			Balance:    c.BalanceWeight,
			Continuity: c.ContinuityWeight,
		},
		Solver: solver.Config{
			Deadline: time.Duration(c.DeadlineSeconds * float64(time.Second)),
			MaxNodes: c.MaxNodes,
			Workers:  c.Workers,
		},
		MaxPatients: c.MaxPatients,
		IVLoadLimit: c.IVLoadLimit,
	}
}

// getEnv 读取字符串环境变量
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt 读取整数环境变量
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// getEnvFloat 读取浮点数环境变量
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
