package checkout

import (
	"regexp"
	"strings"

	"github.com/rosie073/shopfinalcross/internal/domain"
)

const minAddressLength = 10

// 11 digits with the 09 mobile prefix.
var phonePattern = regexp.MustCompile(`^09\d{9}$`)

var phoneSeparators = strings.NewReplacer(" ", "", "-", "")

// Form is the billing form submitted from the checkout page.
type Form struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Payment string `json:"payment"`
}

// Validate checks every field and reports all failures together. On success
// it returns the cleaned billing block and payment method.
func (f Form) Validate() (domain.Billing, domain.PaymentMethod, error) {
	verr := &domain.ValidationError{}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		verr.Add("name", "This field is required.")
	}

	phone := phoneSeparators.Replace(strings.TrimSpace(f.Phone))
	if !phonePattern.MatchString(phone) {
		verr.Add("phone", "Enter an 11-digit mobile number starting with 09.")
	}

	address := strings.TrimSpace(f.Address)
	if len([]rune(address)) < minAddressLength {
		verr.Add("address", "Enter at least 10 characters.")
	}

	payment, ok := domain.ParsePaymentMethod(f.Payment)
	if !ok {
		verr.Add("payment", "Choose a payment method.")
	}

	if len(verr.Fields) > 0 {
		return domain.Billing{}, "", verr
	}
	return domain.Billing{Name: name, Phone: phone, Address: address}, payment, nil
}
