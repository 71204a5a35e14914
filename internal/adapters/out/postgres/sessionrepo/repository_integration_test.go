package sessionrepo_test

import (
	"context"
	"testing"
	"time"

	"orderbot/internal/adapters/out/postgres/sessionrepo"
	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/core/domain/model/menu"
	"orderbot/internal/core/domain/model/session"
	"orderbot/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SessionRepositoryIntegrationTestSuite verifies session persistence against PostgreSQL.
type SessionRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *sessionrepo.GormSessionRepository
	phone      kernel.PhoneNumber
	now        time.Time
}

func (suite *SessionRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&sessionrepo.SessionDTO{}))
	suite.repository = sessionrepo.NewGormSessionRepository(db)
	suite.phone, err = kernel.NewPhoneNumber("919876543210")
	suite.Require().NoError(err)
	suite.now = time.Date(2025, 8, 25, 10, 0, 0, 0, time.UTC)
}

func (suite *SessionRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *SessionRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE sessions").Error)
}

func (suite *SessionRepositoryIntegrationTestSuite) TestSave_InsertThenRoundTrip() {
	ctx := context.Background()
	s, err := session.NewSession(suite.phone, suite.now)
	suite.Require().NoError(err)
	d, _ := kernel.ParseDate("2025-08-30")
	orderID := kernel.NewUUID()
	s.SelectDate(d)
	s.SelectLocation("vyttila_delivery")
	s.SelectItems(menu.Selection{1: 2, 3: 1})
	s.SetDeliveryDetails("Location: 9.9672, 76.3188", "https://www.google.com/maps/place/9.9672,76.3188")
	s.AttachOrder(orderID)
	suite.Require().NoError(s.MoveTo(session.StepAwaitingScreenshot))

	suite.Require().NoError(suite.repository.Save(ctx, s))
	suite.Equal(int64(1), s.Version())

	got, err := suite.repository.Get(ctx, suite.phone)
	suite.Require().NoError(err)
	suite.Equal(session.StepAwaitingScreenshot, got.Step())
	suite.Equal("2025-08-30", got.SelectedDate().String())
	suite.Equal("vyttila_delivery", got.LocationID())
	suite.Equal(menu.Selection{1: 2, 3: 1}, got.Items())
	suite.Equal(s.DeliveryAddress(), got.DeliveryAddress())
	suite.Equal(s.MapsLink(), got.MapsLink())
	suite.Require().NotNil(got.CurrentOrderID())
	suite.True(got.CurrentOrderID().IsEqual(orderID))
	suite.Equal(int64(1), got.Version())
}

func (suite *SessionRepositoryIntegrationTestSuite) TestSave_ResetClearsNullableColumns() {
	ctx := context.Background()
	s, _ := session.NewSession(suite.phone, suite.now)
	d, _ := kernel.ParseDate("2025-08-30")
	s.SelectDate(d)
	s.AttachOrder(kernel.NewUUID())
	suite.Require().NoError(suite.repository.Save(ctx, s))

	s.Reset()
	suite.Require().NoError(suite.repository.Save(ctx, s))

	got, err := suite.repository.Get(ctx, suite.phone)
	suite.Require().NoError(err)
	suite.True(got.SelectedDate().IsZero())
	suite.Nil(got.CurrentOrderID())
	suite.True(got.Items().IsEmpty())
	suite.Equal(int64(2), got.Version())
}

func (suite *SessionRepositoryIntegrationTestSuite) TestSave_StaleVersionConflicts() {
	ctx := context.Background()
	s, _ := session.NewSession(suite.phone, suite.now)
	suite.Require().NoError(suite.repository.Save(ctx, s))

	first, err := suite.repository.Get(ctx, suite.phone)
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, suite.phone)
	suite.Require().NoError(err)

	suite.Require().NoError(first.MoveTo(session.StepDateSelection))
	suite.Require().NoError(suite.repository.Save(ctx, first))

	suite.Require().NoError(second.MoveTo(session.StepCompleted))
	err = suite.repository.Save(ctx, second)
	suite.Require().ErrorIs(err, errs.ErrConcurrencyConflict)
	suite.Equal(int64(1), second.Version(), "a failed save leaves the version untouched")

	got, _ := suite.repository.Get(ctx, suite.phone)
	suite.Equal(session.StepDateSelection, got.Step())
}

func (suite *SessionRepositoryIntegrationTestSuite) TestSave_DuplicateInsertConflicts() {
	ctx := context.Background()
	a, _ := session.NewSession(suite.phone, suite.now)
	b, _ := session.NewSession(suite.phone, suite.now)

	suite.Require().NoError(suite.repository.Save(ctx, a))
	err := suite.repository.Save(ctx, b)

	suite.Require().ErrorIs(err, errs.ErrConcurrencyConflict)
}

func (suite *SessionRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), suite.phone)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func TestSessionRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SessionRepositoryIntegrationTestSuite))
}
