package user

import (
	"fmt"
	"math/rand/v2"
)

// Memorable words used for generated portal passwords. The portal is
// typed into by hand on a separate site, so passwords favor
// memorability over entropy, matching what the billing portal issues.
var passwordWords = []string{
	"Aguila", "Bosque", "Colibri", "Dorado", "Estrella",
	"Fuego", "Granada", "Huracan", "Jaguar", "Laguna",
	"Montana", "Nevado", "Oceano", "Pradera", "Quetzal",
	"Relampago", "Sabana", "Tornado", "Volcan", "Zafiro",
}

// GeneratePortalPassword returns a memorable password in the form
// Word + 4 digits, e.g. "Jaguar4821".
func GeneratePortalPassword() string {
	word := passwordWords[rand.IntN(len(passwordWords))]
	return fmt.Sprintf("%s%04d", word, rand.IntN(10000))
}
