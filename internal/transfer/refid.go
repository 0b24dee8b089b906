package transfer

import (
	"fmt"
	"math/rand"
)

const (
	referencePrefix = "TRANSFER"
	scheduleSuffix  = "-schedule"
)

// GenerateReferenceID возвращает reference number вида TRANSFER-ABC-042.
//
// Три заглавные буквы и число 000–999. Источник случайности не
// криптографический, уникальность не проверяется: повторный ID отклонит движок.
func GenerateReferenceID() string {
	letters := []byte{randLetter(), randLetter(), randLetter()}
	return fmt.Sprintf("%s-%s-%03d", referencePrefix, letters, rand.Intn(1000))
}

func randLetter() byte {
	return byte('A' + rand.Intn(26))
}

// ScheduleID возвращает ID schedule для базового reference number.
func ScheduleID(base string) string {
	return base + scheduleSuffix
}
