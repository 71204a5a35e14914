package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"orderbot/internal/adapters/out/postgres/orderrepo"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/order"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var created = time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)

// OrderRepositoryIntegrationTestSuite verifies order persistence against PostgreSQL.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
	suite.repository = orderrepo.NewGormOrderRepository(db)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(code string, at time.Time) *order.Order {
	phone, err := kernel.NewPhoneNumber("919876543210")
	suite.Require().NoError(err)
	c, err := order.ParseCode(code)
	suite.Require().NoError(err)
	d, err := kernel.ParseDate("2025-08-30")
	suite.Require().NoError(err)
	total, err := kernel.ParseMoney("390.00")
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), c, kernel.NewUUID(), order.Details{
		Phone:           phone,
		DeliveryDate:    d,
		LocationID:      "vyttila_delivery",
		Items:           menu.Selection{1: 2, 3: 1},
		DeliveryAddress: "Flat 2B, Vyttila",
		MapsLink:        "https://www.google.com/maps/place/9.9672,76.3188",
	}, total, at)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_RoundTrip() {
	ctx := context.Background()
	o := suite.newOrder("EO250825ABCD", created)

	suite.Require().NoError(suite.repository.Add(ctx, o))

	for _, load := range []func() (*order.Order, error){
		func() (*order.Order, error) { return suite.repository.Get(ctx, o.ID()) },
		func() (*order.Order, error) { return suite.repository.GetByCode(ctx, o.Code()) },
		func() (*order.Order, error) { return suite.repository.GetByToken(ctx, o.VerificationToken()) },
	} {
		got, err := load()
		suite.Require().NoError(err)
		suite.True(got.ID().IsEqual(o.ID()))
		suite.Equal(o.Code(), got.Code())
		suite.Equal("390.00", got.Total().String())
		suite.Equal(menu.Selection{1: 2, 3: 1}, got.Items())
		suite.Equal("2025-08-30", got.DeliveryDate().String())
		suite.Equal(o.MapsLink(), got.MapsLink())
		suite.Equal(order.Pending, got.Status())
		suite.True(o.CreatedAt().Equal(got.CreatedAt()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateCodeFails() {
	ctx := context.Background()
	suite.Require().NoError(suite.repository.Add(ctx, suite.newOrder("EO250825ABCD", created)))

	err := suite.repository.Add(ctx, suite.newOrder("EO250825ABCD", created))

	suite.Require().Error(err)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	code, _ := order.ParseCode("EO250825ZZZZ")
	_, err = suite.repository.GetByCode(ctx, code)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetByToken(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_WritesFollowUpStateButNotStatus() {
	ctx := context.Background()
	o := suite.newOrder("EO250825ABCD", created)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.AttachScreenshot("https://res.cloudinary.com/demo/payment_EO250825ABCD.png"))
	o.FlagForFollowUp("sheet export failed")
	o.MarkSheetSyncPending()
	suite.Require().NoError(o.Decide(order.DecisionVerify, created))
	suite.Require().NoError(suite.repository.Update(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(o.ScreenshotRef(), got.ScreenshotRef())
	suite.True(got.FollowUpRequired())
	suite.Equal("sheet export failed", got.FollowUpReason())
	suite.True(got.SheetSyncPending())
	suite.Equal(order.Pending, got.Status())
	suite.Nil(got.DecidedAt())

	got.MarkSheetSynced()
	suite.Require().NoError(suite.repository.Update(ctx, got))
	again, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(again.SheetSyncPending(), "a stale copy cannot lower the flag")
}

func (suite *OrderRepositoryIntegrationTestSuite) TestClearSheetSyncPending_OnlyForCurrentStatus() {
	ctx := context.Background()
	o := suite.newOrder("EO250825ABCD", created)
	o.MarkSheetSyncPending()
	suite.Require().NoError(suite.repository.Add(ctx, o))

	exported, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	decided, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(decided.Decide(order.DecisionVerify, created))
	changed, err := suite.repository.DecideIfPending(ctx, decided)
	suite.Require().NoError(err)
	suite.Require().True(changed)

	cleared, err := suite.repository.ClearSheetSyncPending(ctx, exported)
	suite.Require().NoError(err)
	suite.False(cleared, "the exported row still says pending")

	cleared, err = suite.repository.ClearSheetSyncPending(ctx, decided)
	suite.Require().NoError(err)
	suite.True(cleared)

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.False(got.SheetSyncPending())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NotFound() {
	err := suite.repository.Update(context.Background(), suite.newOrder("EO250825ABCD", created))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDecideIfPending_FirstDecisionWins() {
	ctx := context.Background()
	o := suite.newOrder("EO250825ABCD", created)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	verify, err := suite.repository.GetByToken(ctx, o.VerificationToken())
	suite.Require().NoError(err)
	reject, err := suite.repository.GetByToken(ctx, o.VerificationToken())
	suite.Require().NoError(err)
	suite.Require().NoError(verify.Decide(order.DecisionVerify, created.Add(time.Hour)))
	suite.Require().NoError(reject.Decide(order.DecisionReject, created.Add(time.Hour)))

	changed, err := suite.repository.DecideIfPending(ctx, verify)
	suite.Require().NoError(err)
	suite.True(changed)

	changed, err = suite.repository.DecideIfPending(ctx, reject)
	suite.Require().NoError(err)
	suite.False(changed)

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Verified, got.Status())
	suite.Require().NotNil(got.DecidedAt())
	suite.True(created.Add(time.Hour).Equal(*got.DecidedAt()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDecideIfPending_RejectsPendingAggregate() {
	ctx := context.Background()
	o := suite.newOrder("EO250825ABCD", created)
	suite.Require().NoError(suite.repository.Add(ctx, o))

	_, err := suite.repository.DecideIfPending(ctx, o)

	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetSheetSyncPending_OldestFirst() {
	ctx := context.Background()
	newer := suite.newOrder("EO250825NEWR", created.Add(time.Minute))
	older := suite.newOrder("EO250825XLDR", created)
	synced := suite.newOrder("EO250825SYNC", created)
	newer.MarkSheetSyncPending()
	older.MarkSheetSyncPending()
	for _, o := range []*order.Order{newer, older, synced} {
		suite.Require().NoError(suite.repository.Add(ctx, o))
	}

	pending, err := suite.repository.GetSheetSyncPending(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(pending, 2)
	suite.Equal(older.Code(), pending[0].Code())
	suite.Equal(newer.Code(), pending[1].Code())

	limited, err := suite.repository.GetSheetSyncPending(ctx, 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
