package forms

import (
	"net/url"
	"strconv"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// ItemDraft backs the add and edit item modals.
type ItemDraft struct {
	ItemName   string `form:"item_name" validate:"required,max=255" label:"Item Name"`
	Quantity   string `form:"quantity" validate:"omitempty,nonnegint" label:"Quantity"`
	ItemImgURL string `form:"item_img_url" validate:"omitempty,max=255" label:"Item Image URL"`
	ItemVendor string `form:"item_vendor" validate:"omitempty,max=255" label:"Item Vendor"`
	ItemParams string `form:"item_params" validate:"omitempty,max=255" label:"Item Parameters"`
}

// ItemDraftFrom pre-populates the edit modal from an existing item.
func ItemDraftFrom(it models.ItemPublic) ItemDraft {
	d := ItemDraft{
		ItemName:   it.ItemName,
		ItemImgURL: deref(it.ItemImgURL),
		ItemVendor: deref(it.ItemVendor),
		ItemParams: deref(it.ItemParams),
	}
	if it.Quantity != nil {
		d.Quantity = strconv.Itoa(*it.Quantity)
	}
	return d
}

// FromForm reads the posted fields.
func (d *ItemDraft) FromForm(v url.Values) {
	d.ItemName = text(v, "item_name")
	d.Quantity = text(v, "quantity")
	d.ItemImgURL = text(v, "item_img_url")
	d.ItemVendor = text(v, "item_vendor")
	d.ItemParams = text(v, "item_params")
}

// Validate checks the draft before it is sent.
func (d ItemDraft) Validate() FieldErrors { return validateStruct(d) }

// Equal reports whether nothing changed.
func (d ItemDraft) Equal(o ItemDraft) bool { return d == o }

func (d ItemDraft) quantity() *int {
	if d.Quantity == "" {
		return nil
	}
	n, err := strconv.Atoi(d.Quantity)
	if err != nil {
		return nil
	}
	return &n
}

// Create builds the body for a new item in labID.
func (d ItemDraft) Create(labID string) models.ItemCreate {
	return models.ItemCreate{
		LabID:      labID,
		ItemName:   d.ItemName,
		Quantity:   d.quantity(),
		ItemImgURL: optional(d.ItemImgURL),
		ItemVendor: optional(d.ItemVendor),
		ItemParams: optional(d.ItemParams),
	}
}

// Update builds the PUT body. The item stays in labID. A blank quantity
// is sent as 0, the backend's column default.
func (d ItemDraft) Update(labID string) models.ItemUpdate {
	var qty int
	if q := d.quantity(); q != nil {
		qty = *q
	}
	return models.ItemUpdate{
		LabID:      labID,
		ItemName:   d.ItemName,
		Quantity:   qty,
		ItemImgURL: d.ItemImgURL,
		ItemVendor: d.ItemVendor,
		ItemParams: d.ItemParams,
	}
}
