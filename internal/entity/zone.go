package entity

// DeliveryZone is a row of the delivery price table. Fees are in minor
// currency units.
type DeliveryZone struct {
	Code              string `json:"code"                validate:"required,max=50"`
	Name              string `json:"name"                validate:"required,max=100"`
	FeeUnderThreshold uint64 `json:"fee_under_threshold" validate:"gte=0"`
	FreeFromThreshold uint64 `json:"free_from_threshold" validate:"gte=0"`
}
