package pricing

import (
	"bloomshop/internal/entity"
)

const _nightMultiplier = 2

// Surcharge computes the delivery fee in minor currency units.
//
// Pickup costs nothing regardless of zone. With no zone selected the fee is
// zero as well: selection completeness is validated upstream, not here.
// The night slot keeps the flat fee even above the free threshold and
// doubles it below; the doubling never stacks.
func Surcharge(subtotal uint64, zone *entity.DeliveryZone, pickup, nightSlot bool) uint64 {
	if pickup || zone == nil {
		return 0
	}

	if subtotal >= zone.FreeFromThreshold {
		if nightSlot {
			return zone.FeeUnderThreshold
		}
		return 0
	}

	if nightSlot {
		return zone.FeeUnderThreshold * _nightMultiplier
	}
	return zone.FeeUnderThreshold
}

// Subtotal sums line totals in minor currency units.
func Subtotal(items []*entity.Item) uint64 {
	var total uint64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// OrderAmount is the charge captured at creation time: items plus delivery.
// It is computed exactly once; recomputing it for a placed order is a bug.
func OrderAmount(items []*entity.Item, surcharge uint64) uint64 {
	return Subtotal(items) + surcharge
}
