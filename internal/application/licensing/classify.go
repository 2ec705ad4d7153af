package licensing

import "strings"

// ProviderErrorKind is the meaning extracted from a license-platform
// error body. The platform reports business conditions as 503s with
// Spanish prose, so string matching on known fragments is the only
// classification available.
type ProviderErrorKind int

const (
	// ProviderErrorUnknown covers bodies with no recognized fragment.
	ProviderErrorUnknown ProviderErrorKind = iota
	// ProviderErrorAlreadyExists means the client is already on the
	// platform and the request should be retried as an existing client.
	ProviderErrorAlreadyExists
	// ProviderErrorNotRegistered means the client is unknown and the
	// request should be retried as a new client.
	ProviderErrorNotRegistered
)

// Fragments observed in production responses. "no se encuentra
// registrado" must be checked before "ya se encuentra registrado"
// cannot match it, hence the ordering below.
var (
	notRegisteredFragments = []string{
		"no se encuentra registrado",
	}
	alreadyExistsFragments = []string{
		"no esta disponible",
		"no está disponible",
		"ya se encuentra registrado",
	}
)

// ClassifyProviderError maps a provider error body onto the retry
// decision it implies.
func ClassifyProviderError(body string) ProviderErrorKind {
	msg := strings.ToLower(body)
	for _, fragment := range notRegisteredFragments {
		if strings.Contains(msg, fragment) {
			return ProviderErrorNotRegistered
		}
	}
	for _, fragment := range alreadyExistsFragments {
		if strings.Contains(msg, fragment) {
			return ProviderErrorAlreadyExists
		}
	}
	return ProviderErrorUnknown
}
