// Package holdings reconciles a portfolio's positions after an order.
// All functions are pure: inputs are never mutated and no I/O happens here,
// which keeps the weighted-average math independently testable.
package holdings

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradesim-service/tradesim_service/internal/domain/entities"
	apperrors "github.com/tradesim-service/tradesim_service/pkg/errors"
)

// Apply produces the holdings list that results from executing one order
// against the existing list. The input slice is left untouched.
//
// Buys of an already-held symbol recompute the average buy price as a
// quantity-weighted mean. Sells leave the average untouched and delete the
// position when its quantity reaches exactly zero.
func Apply(existing []entities.Holding, symbol string, quantity, price decimal.Decimal, order entities.OrderType) ([]entities.Holding, error) {
	switch order {
	case entities.OrderBuy:
		return applyBuy(existing, symbol, quantity, price), nil
	case entities.OrderSell:
		return applySell(existing, symbol, quantity)
	default:
		return nil, apperrors.ValidationError(fmt.Sprintf("unknown order type %q", order))
	}
}

func applyBuy(existing []entities.Holding, symbol string, quantity, price decimal.Decimal) []entities.Holding {
	out := make([]entities.Holding, 0, len(existing)+1)
	found := false

	for _, h := range existing {
		if h.AssetSymbol == symbol {
			newQty := h.Quantity.Add(quantity)
			// newAvg = (oldAvg*oldQty + price*qty) / newQty
			cost := h.AvgBuyPrice.Mul(h.Quantity).Add(price.Mul(quantity))
			h.Quantity = newQty
			h.AvgBuyPrice = cost.Div(newQty)
			found = true
		}
		out = append(out, h)
	}

	if !found {
		out = append(out, entities.Holding{
			AssetSymbol: symbol,
			Quantity:    quantity,
			AvgBuyPrice: price,
		})
	}

	return out
}

func applySell(existing []entities.Holding, symbol string, quantity decimal.Decimal) ([]entities.Holding, error) {
	idx := -1
	for i, h := range existing {
		if h.AssetSymbol == symbol {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, apperrors.InsufficientHoldings(symbol)
	}

	held := existing[idx].Quantity
	if quantity.GreaterThan(held) {
		return nil, apperrors.Oversell(fmt.Sprintf(
			"cannot sell %s of %s, only %s held", quantity, symbol, held))
	}

	out := make([]entities.Holding, 0, len(existing))
	for i, h := range existing {
		if i != idx {
			out = append(out, h)
			continue
		}
		remaining := h.Quantity.Sub(quantity)
		if remaining.IsZero() {
			continue
		}
		h.Quantity = remaining
		out = append(out, h)
	}

	return out, nil
}

// Find returns the holding for symbol, if present
func Find(list []entities.Holding, symbol string) (entities.Holding, bool) {
	for _, h := range list {
		if h.AssetSymbol == symbol {
			return h, true
		}
	}
	return entities.Holding{}, false
}
