package models

import (
	"github.com/ricoshapp/stylehub/internal/utils"
)

type IBase interface {
	GenIDIfEmpty()
	GenID()
	SetID(id string)
}

type Base struct {
	ID string `bson:"_id,omitempty" json:"id,omitempty"`
}

func (m *Base) GenIDIfEmpty() {
	if m.ID == "" {
		m.GenID()
	}
}

func (m *Base) GenID() {
	m.ID = utils.NewID()
}

func (m *Base) SetID(id string) {
	m.ID = id
}

func NewBase() Base {
	return Base{
		ID: utils.NewID(),
	}
}
