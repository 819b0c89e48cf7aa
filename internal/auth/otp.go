package auth

import (
	"crypto/rand"
	"math/big"
)

// OTPLength is the number of digits in an activation code.
const OTPLength = 6

var ten = big.NewInt(10)

// GenerateOTP returns a numeric code of the given length. Each digit is
// drawn independently and uniformly from crypto/rand, so leading zeros are
// as likely as any other digit.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = OTPLength
	}

	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}
