package valueobjects

import "fmt"

// PaymentProvider identifies where a payment originated. Free-plan
// grants produce zero-amount records under the internal provider so
// every activation stays traceable through the same ledger.
type PaymentProvider struct {
	value string
}

const (
	providerMercadoPago = "mercado_pago"
	providerInternal    = "internal"
)

func NewPaymentProvider(value string) (PaymentProvider, error) {
	switch value {
	case providerMercadoPago, providerInternal:
		return PaymentProvider{value: value}, nil
	}
	return PaymentProvider{}, fmt.Errorf("invalid payment provider: %s", value)
}

func ProviderMercadoPago() PaymentProvider { return PaymentProvider{value: providerMercadoPago} }
func ProviderInternal() PaymentProvider { return PaymentProvider{value: providerInternal} }

func (p PaymentProvider) String() string { return p.value }

func (p PaymentProvider) IsInternal() bool { return p.value == providerInternal }
