package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpin "orderbot/internal/adapters/in/http"
	"orderbot/internal/adapters/out/cloudinary"
	"orderbot/internal/adapters/out/memory"
	"orderbot/internal/adapters/out/postgres"
	"orderbot/internal/adapters/out/qr"
	"orderbot/internal/adapters/out/sheets"
	"orderbot/internal/adapters/out/whatsapp"
	"orderbot/internal/core/application/conversation"
	"orderbot/internal/core/application/effects"
	"orderbot/internal/core/application/usecases/commands"
	"orderbot/internal/core/application/usecases/queries"
	"orderbot/internal/core/domain/model/location"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/core/domain/services"
	"orderbot/internal/core/ports"
	"orderbot/internal/jobs"
	"orderbot/internal/pkg/keylock"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	configs Config
	logger  *slog.Logger
	zone    *time.Location

	gormDB     *gorm.DB
	store      *memory.Store
	uowFactory ports.UnitOfWorkFactory

	catalog *location.Catalog
	menu    *menu.Menu
	machine *conversation.StateMachine
	locks   *keylock.KeyedMutex

	whatsapp  *whatsapp.Client
	artifacts *cloudinary.Store
	qr        *qr.Renderer
	sheets    *sheets.Exporter
	rows      commands.SheetRowBuilder
}

// NewCompositionRoot wires the application. A nil gormDB selects the in-memory store.
func NewCompositionRoot(ctx context.Context, configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	zone, err := configs.Location()
	if err != nil {
		return nil, err
	}
	fee, err := configs.Fee()
	if err != nil {
		return nil, err
	}
	catalog, err := location.NewCatalog(configs.Areas(), fee)
	if err != nil {
		return nil, fmt.Errorf("build location catalog: %w", err)
	}

	c := &CompositionRoot{
		configs: configs,
		logger:  logger,
		zone:    zone,
		gormDB:  gormDB,
		catalog: catalog,
		menu:    menu.DefaultMenu(),
		locks:   keylock.New(),
	}

	if gormDB != nil {
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	} else {
		c.store = memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(c.store)
	}

	pricer := services.NewOrderPricer(c.menu)
	calendar, err := services.NewDeliveryCalendar(services.DefaultLeadDays, services.DefaultWindowDays, zone)
	if err != nil {
		return nil, err
	}
	ledger := services.NewOrderLedger(pricer, catalog, order.NewCodeGenerator(), nil)
	c.machine = conversation.NewStateMachine(catalog, pricer, calendar, ledger)

	if err := c.connectIntegrations(ctx); err != nil {
		return nil, err
	}
	c.rows = commands.NewSheetRowBuilder(catalog, c.menu, configs.BaseURL, zone)
	return c, nil
}

func (c *CompositionRoot) connectIntegrations(ctx context.Context) error {
	rate, err := c.configs.RatePerSecond()
	if err != nil {
		return err
	}
	c.whatsapp, err = whatsapp.NewClient(whatsapp.Config{
		PhoneNumberID: c.configs.WhatsAppPhoneNumberID,
		AccessToken:   c.configs.WhatsAppAccessToken,
		RatePerSecond: rate,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("configure whatsapp: %w", err)
	}

	c.artifacts, err = cloudinary.NewStore(c.configs.CloudinaryURL, c.configs.Folder(), c.logger)
	if err != nil {
		return err
	}

	c.qr, err = qr.NewRenderer(c.configs.UPIID, c.configs.UPIMerchantName, c.artifacts, c.logger)
	if err != nil {
		return fmt.Errorf("configure qr: %w", err)
	}

	c.sheets, err = sheets.NewExporter(ctx, sheets.Config{
		CredentialsJSON: c.configs.GoogleCredentialsJSON,
		SpreadsheetID:   c.configs.GoogleSheetID,
		SheetName:       c.configs.GoogleSheetName,
	}, c.logger)
	if err != nil {
		return fmt.Errorf("configure sheets: %w", err)
	}
	return nil
}

func (c *CompositionRoot) conversationUoWFactory() commands.ConversationUoWFactory {
	return FuncConversationUoWFactory(func() commands.ConversationUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateEffectsDispatcher() *effects.Dispatcher {
	return effects.NewDispatcher(effects.Dependencies{
		Messenger:  c.whatsapp,
		Media:      c.whatsapp,
		Artifacts:  c.artifacts,
		QR:         c.qr,
		Sheets:     c.sheets,
		Rows:       c.rows,
		UoWFactory: c.orderUoWFactory(),
		UPIID:      c.configs.UPIID,
		Logger:     c.logger,
	})
}

func (c *CompositionRoot) CreateHandleInboundEventCommandHandler() commands.HandleInboundEventCommandHandler {
	return commands.NewHandleInboundEventCommandHandler(
		c.conversationUoWFactory(),
		c.machine,
		c.locks,
		c.whatsapp,
		c.CreateEffectsDispatcher(),
		nil,
		c.logger,
	)
}

func (c *CompositionRoot) CreateProcessVerificationCommandHandler() commands.ProcessVerificationCommandHandler {
	return commands.NewProcessVerificationCommandHandler(c.orderUoWFactory(), c.whatsapp, c.sheets, nil, c.logger)
}

func (c *CompositionRoot) CreateManageLocationCommandHandler() commands.ManageLocationCommandHandler {
	return commands.NewManageLocationCommandHandler(c.catalog, c.logger)
}

func (c *CompositionRoot) CreateSyncSheetCommandHandler() commands.SyncSheetCommandHandler {
	return commands.NewSyncSheetCommandHandler(c.orderUoWFactory(), c.sheets, c.rows, c.logger)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() httpin.OrderStatusReader {
	if c.gormDB == nil {
		return memory.NewGetOrderStatusQueryHandler(c.store)
	}
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetFollowUpOrdersQueryHandler() httpin.FollowUpOrdersReader {
	if c.gormDB == nil {
		return memory.NewGetFollowUpOrdersQueryHandler(c.store)
	}
	return queries.NewGetFollowUpOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateServer() (*httpin.Server, error) {
	workers, err := c.configs.Workers()
	if err != nil {
		return nil, err
	}
	return httpin.NewServer(httpin.Handlers{
		InboundEvent:   c.CreateHandleInboundEventCommandHandler(),
		Verification:   c.CreateProcessVerificationCommandHandler(),
		ManageLocation: c.CreateManageLocationCommandHandler(),
		OrderStatus:    c.CreateGetOrderStatusQueryHandler(),
		FollowUpOrders: c.CreateGetFollowUpOrdersQueryHandler(),
		Locations:      c.catalog,
	}, httpin.Options{
		VerifyToken:    c.configs.WhatsAppVerifyToken,
		AdminToken:     c.configs.AdminToken,
		WebhookWorkers: workers,
	}, c.logger), nil
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(jobs.NewSheetSyncJob(c.CreateSyncSheetCommandHandler(), c.configs.SheetSyncSchedule, c.logger))
}

type FuncConversationUoWFactory func() commands.ConversationUoW

func (f FuncConversationUoWFactory) Create() commands.ConversationUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
