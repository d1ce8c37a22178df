package simulation

import (
	"crypto/rand"
	"math/big"
	"time"
)

func cryptoRandIntn(max int) int {
	if max <= 0 {
		return 0
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0
	}
	return int(n.Int64())
}

func RandomChoice[T any](choices []T) T {
	return choices[cryptoRandIntn(len(choices))]
}

func RandomDuration(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(cryptoRandIntn(int(max)))
}
