package dto_test

import (
	"testing"

	"github.com/jhoicas/farmacia-pos/internal/application/dto"
	"github.com/stretchr/testify/assert"
)

func TestDefaultPage_Limites(t *testing.T) {
	cases := []struct {
		name string
		in   dto.PageRequest
		want dto.PageRequest
	}{
		{"sin parámetros", dto.PageRequest{}, dto.PageRequest{Limit: 20}},
		{"límite negativo", dto.PageRequest{Limit: -5, Offset: 3}, dto.PageRequest{Limit: 20, Offset: 3}},
		{"límite dentro del rango", dto.PageRequest{Limit: 50, Offset: 10}, dto.PageRequest{Limit: 50, Offset: 10}},
		{"límite en el máximo", dto.PageRequest{Limit: 100}, dto.PageRequest{Limit: 100}},
		{"límite excedido", dto.PageRequest{Limit: 5000}, dto.PageRequest{Limit: 100}},
		{"offset negativo", dto.PageRequest{Limit: 1, Offset: -1}, dto.PageRequest{Limit: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := tc.in
			page.DefaultPage()
			assert.Equal(t, tc.want, page)
		})
	}
}
