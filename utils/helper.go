package utils

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/go-playground/validator/v10"
	"github.com/rahim5123rk-sys/trade-flow-app-sub000/config"
	"github.com/shopspring/decimal"
)

func IsValidEmail(email string) bool {
	// Basic email validation regex pattern
	pattern := `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	regex := regexp.MustCompile(pattern)
	return regex.MatchString(email)
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

// CompanyLock obtains a short-lived advisory lock for a company-wide
// operation (e.g. customer anonymization). The returned release func must be
// called by the holder; it is a no-op when redis is not configured.
func CompanyLock(ctx context.Context, companyId string, lockType string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		// Redis lock not configured; single-instance deployments rely on the
		// DB transaction alone.
		return func() {}, nil
	}
	lockKey := fmt.Sprintf("%s:%s", lockType, companyId)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock for companyId", companyId, err)
		return nil, errors.New("could not obtain lock for companyId")
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock for companyId", companyId, err)
		return nil, err
	}
	return func() {
		_ = lock.Release(ctx)
	}, nil
}
