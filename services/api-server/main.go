package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkphhh/easy-finance/internal/config"
	"github.com/dkphhh/easy-finance/internal/extractor"
	"github.com/dkphhh/easy-finance/internal/model"
	"github.com/dkphhh/easy-finance/internal/ocr"
	"github.com/dkphhh/easy-finance/internal/recognizer"
	"github.com/dkphhh/easy-finance/internal/storage"
	"github.com/dkphhh/easy-finance/services/api-server/handlers"
	"github.com/dkphhh/easy-finance/services/api-server/middleware"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
}

func main() {
	// 解析命令行参数
	var configPath string
	if len(os.Args) > 1 && os.Args[1] == "-config" && len(os.Args) > 2 {
		configPath = os.Args[2]
	} else {
		configPath = "configs/config.yaml"
	}

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 创建服务器
	server, err := NewServer(cfg)
	if err != nil {
		log.Fatalf("创建服务器失败: %v", err)
	}

	// 启动服务器
	if err := server.Start(); err != nil {
		log.Fatalf("启动服务器失败: %v", err)
	}
}

func NewServer(cfg *config.Config) (*Server, error) {
	// 没有密钥就无法调通OCR接口，启动时直接拒绝
	if cfg.Provider.SecretID == "" || cfg.Provider.SecretKey == "" {
		return nil, model.NewMissingCredentialsError()
	}

	// 设置Gin模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化OCR客户端
	signer := ocr.NewSigner(
		ocr.Credentials{SecretID: cfg.Provider.SecretID, SecretKey: cfg.Provider.SecretKey},
		ocr.WithHost(cfg.Provider.Host),
		ocr.WithRegion(cfg.Provider.Region),
	)
	client := ocr.NewClient(signer, ocr.ClientConfig{
		Action:  cfg.Provider.Action,
		Timeout: cfg.Provider.Timeout,
	})

	// 初始化识别服务
	limiter := recognizer.NewRateLimiter(cfg.RateLimit.RequestsPerWindow, cfg.RateLimit.Window)
	service := recognizer.NewService(client, extractor.New(extractor.DefaultBankSlipPolicy), limiter)

	// 初始化凭证归档，未启用时识别结果不带原件链接
	var archive storage.Archive
	if cfg.Storage.Enabled {
		var err error
		archive, err = storage.NewMinIOArchive(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("初始化凭证归档失败: %w", err)
		}
	}

	// 创建处理器
	h := handlers.NewHandlers(service, archive)

	// 创建路由
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.MaxMultipartMemory = cfg.Server.MaxUploadSize

	server := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
	}

	// 设置路由
	server.setupRoutes()

	return server, nil
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api/v1")

	// 健康检查
	api.GET("/health", s.handlers.Health)

	// 票据识别与导出
	api.POST("/recognize", s.handlers.Recognize)
	api.POST("/export", s.handlers.Export)
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)

	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	// 在goroutine中启动服务器
	go func() {
		log.Printf("API服务器启动在 %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务器...")

	// 创建关闭上下文
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 关闭HTTP服务器
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("服务器关闭失败: %v", err)
		return err
	}

	log.Println("服务器已关闭")
	return nil
}
