// internal/domain/models/item.go
package models

// ItemPublic is an inventory record. Every item belongs to exactly one lab.
type ItemPublic struct {
	ItemID     string  `json:"item_id"`
	LabID      string  `json:"lab_id"`
	ItemName   string  `json:"item_name"`
	Quantity   *int    `json:"quantity,omitempty"`
	ItemImgURL *string `json:"item_img_url,omitempty"`
	ItemVendor *string `json:"item_vendor,omitempty"`
	ItemParams *string `json:"item_params,omitempty"`
}

// ItemsPublic is one page of items in a lab.
type ItemsPublic struct {
	Data  []ItemPublic `json:"data"`
	Count int          `json:"count"`
}

// ItemCreate is the "create item" body.
type ItemCreate struct {
	LabID      string  `json:"lab_id"`
	ItemName   string  `json:"item_name"`
	Quantity   *int    `json:"quantity,omitempty"`
	ItemImgURL *string `json:"item_img_url,omitempty"`
	ItemVendor *string `json:"item_vendor,omitempty"`
	ItemParams *string `json:"item_params,omitempty"`
}

// ItemUpdate is the PUT body for an item. The backend only changes the
// keys present in the body, so every edited field is always sent and a
// blank string clears it.
type ItemUpdate struct {
	LabID      string `json:"lab_id"`
	ItemName   string `json:"item_name"`
	Quantity   int    `json:"quantity"`
	ItemImgURL string `json:"item_img_url"`
	ItemVendor string `json:"item_vendor"`
	ItemParams string `json:"item_params"`
}
