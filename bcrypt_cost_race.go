//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

func defaultHashCost() int {
	// race builds are slow enough already
	return bcrypt.DefaultCost
}
