package features

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) any { return v }
func s(v string) any  { return v }

func TestPaymentCode_CaseInsensitive(t *testing.T) {
	cases := map[string]int{
		"cash on delivery": 0,
		"Credit Card":      1,
		"PAYTM":            2,
		"PayPal":           3,
		"  paypal  ":       3,
	}
	for in, want := range cases {
		code, ok := PaymentCode(in)
		require.True(t, ok, "expected %q to map", in)
		assert.Equal(t, want, code, "code for %q", in)
	}
}

func TestPaymentCode_UnknownType(t *testing.T) {
	for _, in := range []string{"bitcoin", "", "cash", "credit"} {
		_, ok := PaymentCode(in)
		assert.False(t, ok, "expected %q to be rejected", in)
	}
}

func TestPaymentTypes_SortedByCode(t *testing.T) {
	assert.Equal(t,
		[]string{"cash on delivery", "credit card", "paytm", "paypal"},
		PaymentTypes())
}

func TestValidate_HappyPath(t *testing.T) {
	vec, err := Validate(Request{
		TypingSpeed: f(45),
		TimeOnPage:  f(13),
		PaymentType: s("credit card"),
	})
	require.NoError(t, err)
	assert.Equal(t, Vector{45, 13, 1}, vec)
}

func TestValidate_NumericStringsCoerce(t *testing.T) {
	vec, err := Validate(Request{
		TypingSpeed: s("45.5"),
		TimeOnPage:  s("13"),
		PaymentType: s("paypal"),
	})
	require.NoError(t, err)
	assert.Equal(t, Vector{45.5, 13, 3}, vec)
}

func TestValidate_MissingFields(t *testing.T) {
	_, err := Validate(Request{PaymentType: s("paytm")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Missing required fields")
	assert.ElementsMatch(t, []string{"typing_speed", "time_on_page"}, verr.Fields)
}

func TestValidate_NonNumericInput(t *testing.T) {
	_, err := Validate(Request{
		TypingSpeed: s("fast"),
		TimeOnPage:  f(13),
		PaymentType: s("paytm"),
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "Invalid numeric values")
}

func TestValidate_Bounds(t *testing.T) {
	tests := []struct {
		name        string
		speed, page float64
		wantErr     string
	}{
		{"zero boundaries accepted", 0, 0, ""},
		{"upper boundaries accepted", 200, 3600, ""},
		{"speed just over", 200.01, 13, "Typing speed out of valid range"},
		{"speed negative", -0.01, 13, "Typing speed out of valid range"},
		{"page just over", 45, 3600.01, "Time on page out of valid range"},
		{"page negative", 45, -0.01, "Time on page out of valid range"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(Request{
				TypingSpeed: f(tc.speed),
				TimeOnPage:  f(tc.page),
				PaymentType: s("cash on delivery"),
			})
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidate_UnknownPaymentListsSupported(t *testing.T) {
	_, err := Validate(Request{
		TypingSpeed: f(45),
		TimeOnPage:  f(13),
		PaymentType: s("bitcoin"),
	})
	require.Error(t, err)
	for _, pt := range PaymentTypes() {
		assert.True(t, strings.Contains(err.Error(), pt),
			"error should list supported type %q: %s", pt, err)
	}
}
