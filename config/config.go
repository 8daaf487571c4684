// Package config 提供配置加载和管理功能
package config

import (
	"fmt"
	"time"

	"github.com/ByLCY/quire/layout"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Layout        LayoutConfig        `yaml:"layout" mapstructure:"layout"`
	Measure       MeasureConfig       `yaml:"measure" mapstructure:"measure"`
	Storage       StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Library       LibraryConfig       `yaml:"library" mapstructure:"library"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// CORSOrigins 为空时允许所有来源
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// Addr 返回监听地址
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LayoutConfig 默认排版参数与定位策略
type LayoutConfig struct {
	layout.Config `yaml:",inline" mapstructure:",squash"`
	Locator       string `yaml:"locator" mapstructure:"locator"`
}

// LocatorMode 返回解析后的定位策略
func (c LayoutConfig) LocatorMode() layout.LocatorMode {
	return layout.ParseLocatorMode(c.Locator)
}

// MeasureConfig 测量后端配置
type MeasureConfig struct {
	// Font 为 builtin:<name> 或字体文件路径
	Font              string  `yaml:"font" mapstructure:"font"`
	HeadingScale      float64 `yaml:"heading_scale" mapstructure:"heading_scale"`
	HorizontalPadding float64 `yaml:"horizontal_padding" mapstructure:"horizontal_padding"`
}

// StorageConfig 阅读状态存储配置
type StorageConfig struct {
	// Driver 可选 memory | redis
	Driver string      `yaml:"driver" mapstructure:"driver"`
	Redis  RedisConfig `yaml:"redis" mapstructure:"redis"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	Password     string        `yaml:"password" mapstructure:"password"`
	DB           int           `yaml:"db" mapstructure:"db"`
	KeyPrefix    string        `yaml:"key_prefix" mapstructure:"key_prefix"`
	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// Addr 返回 Redis 地址
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LibraryConfig 书库目录
type LibraryConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}
