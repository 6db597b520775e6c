package validator

import "testing"

type checkOutInput struct {
	RoomCondition string `json:"room_condition" validate:"room_condition"`
	Method        string `json:"payment_method" validate:"required,payment_method"`
	Status        string `json:"status" validate:"booking_status"`
}

func TestCustomTags(t *testing.T) {
	errs := Validate(checkOutInput{RoomCondition: "good", Method: "CARD"})
	if errs != nil {
		t.Fatalf("expected valid input, got %v", errs)
	}

	errs = Validate(checkOutInput{RoomCondition: "SPOTLESS", Method: "BITCOIN", Status: "ARCHIVED"})
	for _, field := range []string{"room_condition", "payment_method", "status"} {
		if errs[field] == "" {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}

func TestRequiredUsesJSONName(t *testing.T) {
	errs := Validate(checkOutInput{})
	if errs["payment_method"] != "This field is required" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
