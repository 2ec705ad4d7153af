package licensing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyProviderError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ProviderErrorKind
	}{
		{
			name: "username taken",
			body: "El nombre de usuario no esta disponible",
			want: ProviderErrorAlreadyExists,
		},
		{
			name: "username taken accented",
			body: "El nombre de usuario no está disponible",
			want: ProviderErrorAlreadyExists,
		},
		{
			name: "client already registered",
			body: "El cliente ya se encuentra registrado",
			want: ProviderErrorAlreadyExists,
		},
		{
			name: "client unknown",
			body: "El cliente no se encuentra registrado en la plataforma",
			want: ProviderErrorNotRegistered,
		},
		{
			name: "mixed case",
			body: "EL CLIENTE YA SE ENCUENTRA REGISTRADO",
			want: ProviderErrorAlreadyExists,
		},
		{
			name: "unrecognized body",
			body: "Error interno del servidor",
			want: ProviderErrorUnknown,
		},
		{
			name: "empty body",
			body: "",
			want: ProviderErrorUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyProviderError(tt.body))
		})
	}
}

func TestPlanClassification(t *testing.T) {
	tests := []struct {
		name        string
		plan        Plan
		wantFree    bool
		wantPremium bool
	}{
		{name: "free by zero price", plan: Plan{Name: "Plan Inicial"}, wantFree: true},
		{name: "free by gratuito", plan: Plan{Name: "Plan Gratuito"}, wantFree: true},
		{name: "free in english without price", plan: Plan{Name: "Free Plan"}, wantFree: true},
		{name: "team is premium", plan: Plan{Name: "Plan Equipo", Price: 4990}, wantPremium: true},
		{name: "annual is premium", plan: Plan{Name: "Plan Anual", Price: 4990}, wantPremium: true},
		{name: "extra license is not premium", plan: Plan{Name: "Licencia Adicional Premium", Price: 490}},
		{name: "plain plan is neither", plan: Plan{Name: "Plan Individual", Price: 990}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantFree, tt.plan.IsFree())
			assert.Equal(t, tt.wantPremium, tt.plan.IsPremium())
		})
	}
}
