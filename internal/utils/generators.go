package utils

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/lithammer/shortuuid/v3"
)

const bookingSuffixAlphabet = "0123456789"

// GenerateBookingUUID returns prefix + yymmddHHMMSS (UTC) + 4 random digits.
func GenerateBookingUUID(prefix string, now time.Time) string {
	suffix := make([]byte, 4)
	max := big.NewInt(int64(len(bookingSuffixAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS source is unavailable
			panic(err)
		}
		suffix[i] = bookingSuffixAlphabet[n.Int64()]
	}
	return prefix + now.UTC().Format("060102150405") + string(suffix)
}

// GenerateTransactionCode returns a 24 character payment transaction token.
func GenerateTransactionCode() string {
	return "tx" + shortuuid.New()
}

// GenerateOrderID returns an order id for the sandbox payment gateway.
func GenerateOrderID() string {
	return "order_" + shortuuid.New()
}
