package entity

type DeliveryType string

const (
	DeliveryPickup  DeliveryType = "pickup"
	DeliveryCourier DeliveryType = "courier"
)

// TimeSlotNight is the slot code for the night tariff window.
const TimeSlotNight = "night"

type Customer struct {
	Name           string       `json:"name"                      validate:"required,max=100"`
	Phone          string       `json:"phone"                     validate:"required,e164"`
	Email          string       `json:"email,omitempty"           validate:"omitempty,email,max=100"`
	RecipientName  string       `json:"recipient_name,omitempty"  validate:"max=100"`
	RecipientPhone string       `json:"recipient_phone,omitempty" validate:"omitempty,e164"`
	DeliveryType   DeliveryType `json:"delivery_type"             validate:"required,oneof=pickup courier"`
	DeliveryZone   string       `json:"delivery_zone,omitempty"   validate:"max=50"`
	Address        string       `json:"address,omitempty"         validate:"max=500"`
	DeliveryDate   string       `json:"delivery_date,omitempty"   validate:"max=20"`
	DeliveryTime   string       `json:"delivery_time,omitempty"   validate:"max=50"`
	CardText       string       `json:"card_text,omitempty"       validate:"max=1000"`
	Note           string       `json:"note,omitempty"            validate:"max=1000"`
	Anonymous      bool         `json:"anonymous"`
	CallRecipient  bool         `json:"call_recipient"`
	PromoConsent   bool         `json:"promo_consent"`
}

func (c *Customer) IsPickup() bool {
	return c.DeliveryType == DeliveryPickup
}

func (c *Customer) IsNightSlot() bool {
	return c.DeliveryTime == TimeSlotNight
}
