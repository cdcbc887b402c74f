// Package config 加载和校验服务配置
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dkphhh/easy-finance/internal/model"
)

// ProviderConfig 腾讯云OCR接口配置。
// 密钥缺失不在加载时报错：签名会照常生成无效结果并在调用时被服务端拒绝，
// 配置错误的暴露时机与线上行为保持一致。
type ProviderConfig struct {
	SecretID  string        `yaml:"secret_id" env:"SECRETID"`
	SecretKey string        `yaml:"secret_key" env:"SECRETKEY"`
	Host      string        `yaml:"host" env:"OCR_HOST" default:"ocr.tencentcloudapi.com"`
	Region    string        `yaml:"region" env:"OCR_REGION" default:"ap-beijing"`
	Action    string        `yaml:"action" env:"OCR_ACTION" default:"RecognizeGeneralInvoice"`
	Timeout   time.Duration `yaml:"timeout" env:"OCR_TIMEOUT" default:"60s"`
}

// RateLimitConfig 限流配置。接口QPS上限为5，默认留出余量限制为每秒3个
type RateLimitConfig struct {
	RequestsPerWindow int           `yaml:"requests_per_window" env:"RATE_LIMIT_REQUESTS" default:"3" validate:"min=1"`
	Window            time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" default:"1s"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Port          int    `yaml:"port" env:"SERVER_PORT" default:"8080" validate:"min=1,max=65535"`
	Mode          string `yaml:"mode" env:"SERVER_MODE" default:"release" validate:"oneof=debug release test"`
	MaxUploadSize int64  `yaml:"max_upload_size" env:"SERVER_MAX_UPLOAD_SIZE" default:"33554432"` // 32MB
}

// StorageConfig 凭证文件归档存储配置，未启用时识别结果不带原件链接
type StorageConfig struct {
	Enabled         bool          `yaml:"enabled" env:"STORAGE_ENABLED" default:"false"`
	Endpoint        string        `yaml:"endpoint" env:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `yaml:"access_key_id" env:"STORAGE_ACCESS_KEY_ID"`
	SecretAccessKey string        `yaml:"secret_access_key" env:"STORAGE_SECRET_ACCESS_KEY"`
	UseSSL          bool          `yaml:"use_ssl" env:"STORAGE_USE_SSL" default:"false"`
	Bucket          string        `yaml:"bucket" env:"STORAGE_BUCKET" default:"easy-finance"`
	URLExpiry       time.Duration `yaml:"url_expiry" env:"STORAGE_URL_EXPIRY" default:"24h"`
}

// Config 服务完整配置
type Config struct {
	Provider  ProviderConfig  `yaml:"provider"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
}

// Load 按 默认值 -> yaml文件 -> 环境变量 的顺序加载配置并校验。
// configPath为空或文件不存在时跳过文件加载。
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("设置默认配置失败: %w", err)
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("读取配置文件失败: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, model.NewInvalidConfigError(err.Error())
	}

	return cfg, nil
}
