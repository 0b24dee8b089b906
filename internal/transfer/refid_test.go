package transfer

import (
	"regexp"
	"strings"
	"testing"
)

var referencePattern = regexp.MustCompile(`^TRANSFER-[A-Z]{3}-\d{3}$`)

func TestGenerateReferenceID_Format(t *testing.T) {
	for i := 0; i < 5000; i++ {
		id := GenerateReferenceID()
		if !referencePattern.MatchString(id) {
			t.Fatalf("GenerateReferenceID() = %q, does not match %s", id, referencePattern)
		}
	}
}

func TestGenerateReferenceID_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[GenerateReferenceID()] = struct{}{}
	}
	// 100 выборок из ~17.6M значений: совпадения возможны, но не все одинаковые.
	if len(seen) < 90 {
		t.Errorf("expected mostly distinct IDs, got %d unique of 100", len(seen))
	}
}

func TestScheduleID(t *testing.T) {
	base := GenerateReferenceID()
	id := ScheduleID(base)

	if id != base+"-schedule" {
		t.Errorf("ScheduleID(%q) = %q", base, id)
	}
	if !strings.HasSuffix(id, "-schedule") {
		t.Errorf("schedule ID %q should end with -schedule", id)
	}
}
