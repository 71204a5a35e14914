package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"orderbot/internal/core/domain/model/kernel"
	"orderbot/internal/pkg/errs"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	defaultHTTPPort       = "8080"
	defaultTimezone       = "Asia/Kolkata"
	defaultDeliveryFee    = "50"
	defaultWebhookWorkers = 4
	defaultCloudinaryDir  = "orders"
)

// Config is read from the environment; see main.getConfigs for the keys.
// Numeric and list values stay strings here and are parsed by the accessors.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	Storage    string

	BaseURL  string
	Timezone string

	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppRatePerSecond string

	UPIID           string
	UPIMerchantName string

	CloudinaryURL    string
	CloudinaryFolder string

	GoogleCredentialsJSON string
	GoogleSheetID         string
	GoogleSheetName       string

	DeliveryAreas     string
	DeliveryFee       string
	AdminToken        string
	WebhookWorkers    string
	SheetSyncSchedule string
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var errList []error
	required := []struct{ name, value string }{
		{"BASE_URL", c.BaseURL},
		{"WHATSAPP_ACCESS_TOKEN", c.WhatsAppAccessToken},
		{"WHATSAPP_PHONE_NUMBER_ID", c.WhatsAppPhoneNumberID},
		{"WHATSAPP_VERIFY_TOKEN", c.WhatsAppVerifyToken},
		{"UPI_ID", c.UPIID},
		{"UPI_MERCHANT_NAME", c.UPIMerchantName},
		{"CLOUDINARY_URL", c.CloudinaryURL},
		{"GOOGLE_CREDENTIALS_JSON", c.GoogleCredentialsJSON},
		{"GOOGLE_SHEET_ID", c.GoogleSheetID},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errList = append(errList, errs.NewValueIsRequiredError(r.name))
		}
	}
	if c.StorageKind() == StoragePostgres && c.DBHost == "" {
		errList = append(errList, errs.NewValueIsRequiredError("DB_HOST"))
	}
	if s := c.StorageKind(); s != StoragePostgres && s != StorageMemory {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("STORAGE", fmt.Errorf("unknown storage %q", s)))
	}
	if len(c.Areas()) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("DELIVERY_AREAS"))
	}
	if _, err := c.Fee(); err != nil {
		errList = append(errList, err)
	}
	if _, err := c.Location(); err != nil {
		errList = append(errList, err)
	}
	if _, err := c.Workers(); err != nil {
		errList = append(errList, err)
	}
	if _, err := c.RatePerSecond(); err != nil {
		errList = append(errList, err)
	}
	return errors.Join(errList...)
}

func (c Config) Port() string {
	if c.HTTPPort == "" {
		return defaultHTTPPort
	}
	return c.HTTPPort
}

// StorageKind is "postgres" unless STORAGE says otherwise.
func (c Config) StorageKind() string {
	if c.Storage == "" {
		return StoragePostgres
	}
	return strings.ToLower(c.Storage)
}

// DSN is the gorm postgres connection string.
func (c Config) DSN() string {
	sslMode := c.DBSslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// Areas splits DELIVERY_AREAS ("Vyttila, Kakkanad, Edappally") into names.
func (c Config) Areas() []string {
	var areas []string
	for _, a := range strings.Split(c.DeliveryAreas, ",") {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}
	return areas
}

func (c Config) Fee() (kernel.Money, error) {
	raw := c.DeliveryFee
	if raw == "" {
		raw = defaultDeliveryFee
	}
	fee, err := kernel.ParseMoney(raw)
	if err != nil {
		return kernel.Money{}, errs.NewValueIsInvalidErrorWithCause("DELIVERY_FEE", err)
	}
	return fee, nil
}

// Location is the zone delivery dates and spreadsheet timestamps are computed in.
func (c Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = defaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("TIMEZONE", err)
	}
	return loc, nil
}

func (c Config) Workers() (int, error) {
	if c.WebhookWorkers == "" {
		return defaultWebhookWorkers, nil
	}
	n, err := strconv.Atoi(c.WebhookWorkers)
	if err != nil || n < 1 {
		return 0, errs.NewValueIsOutOfRangeError("WEBHOOK_WORKERS", c.WebhookWorkers, 1, "unbounded")
	}
	return n, nil
}

// RatePerSecond returns 0 when unset, letting the WhatsApp client pick its default.
func (c Config) RatePerSecond() (float64, error) {
	if c.WhatsAppRatePerSecond == "" {
		return 0, nil
	}
	r, err := strconv.ParseFloat(c.WhatsAppRatePerSecond, 64)
	if err != nil || r <= 0 {
		return 0, errs.NewValueIsOutOfRangeError("WHATSAPP_RATE_PER_SECOND", c.WhatsAppRatePerSecond, 0, "unbounded")
	}
	return r, nil
}

func (c Config) Folder() string {
	if c.CloudinaryFolder == "" {
		return defaultCloudinaryDir
	}
	return c.CloudinaryFolder
}
