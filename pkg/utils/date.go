package utils

import (
	"strings"
	"time"
)

// dateLayouts são os formatos de data aceitos na importação, do mais comum ao
// menos comum. O primeiro que casar define a interpretação.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006/01/02",
	"02/01/2006",
}

// NormalizeDate converte uma célula de data para "YYYY-MM-DD". Valores vazios
// ou não reconhecidos viram nil — nunca erro, espelhando a coerção numérica.
func NormalizeDate(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			formatted := parsed.Format(time.DateOnly)
			return &formatted
		}
	}

	return nil
}

// ValidateISODate confirma que o parâmetro da requisição é uma data ISO válida.
// Vazio é permitido (filtro ausente).
func ValidateISODate(value string) error {
	if value == "" {
		return nil
	}

	_, err := time.Parse(time.DateOnly, value)
	return err
}
