package config

import (
	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/repository"
	"pdf-annotator/internal/service"
	"pdf-annotator/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config        domain.Config
	Logger        domain.Logger
	Renderer      domain.PDFRenderer
	Painter       domain.OverlayPainter
	Exporter      domain.Exporter
	EditorService *service.EditorService
}

// NewContainer creates a new dependency injection container
func NewContainer() (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFormat())
	return NewContainerWith(config, appLogger)
}

// NewContainerWith wires the application around an existing config and logger.
func NewContainerWith(config domain.Config, appLogger domain.Logger) (*Container, error) {
	renderer := service.NewFitzRenderer(appLogger)
	painter, err := service.NewRasterPainter(appLogger)
	if err != nil {
		return nil, err
	}
	exporter := service.NewPDFExporter(appLogger)

	editorService := service.NewEditorService(renderer, painter, exporter, appLogger, service.EditorOptions{
		BaseScale:       config.GetBaseScale(),
		MaxFileSize:     config.GetMaxFileSize(),
		DefaultFontSize: config.GetDefaultFontSize(),
		DefaultColor:    config.GetDefaultColor(),
		NewStore: func() domain.AnnotationStore {
			return repository.NewMemoryAnnotationStore()
		},
		NewID: service.UUIDv7(),
	})

	return &Container{
		Config:        config,
		Logger:        appLogger,
		Renderer:      renderer,
		Painter:       painter,
		Exporter:      exporter,
		EditorService: editorService,
	}, nil
}

// GetConfig returns the configuration instance
func (c *Container) GetConfig() domain.Config {
	return c.Config
}

// GetLogger returns the logger instance
func (c *Container) GetLogger() domain.Logger {
	return c.Logger
}
