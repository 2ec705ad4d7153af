package paymentgateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentInfoApproved(t *testing.T) {
	tests := []struct {
		name   string
		status string
		detail string
		want   bool
	}{
		{name: "accredited", status: "approved", detail: "accredited", want: true},
		{name: "approved but capture pending", status: "approved", detail: "pending_capture"},
		{name: "approved but partially refunded", status: "approved", detail: "partially_refunded"},
		{name: "pending", status: "pending", detail: "pending_contingency"},
		{name: "rejected", status: "rejected", detail: "cc_rejected_other_reason"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := PaymentInfo{Status: tt.status, StatusDetail: tt.detail}
			assert.Equal(t, tt.want, info.Approved())
		})
	}
}
