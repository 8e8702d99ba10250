package dto

import "github.com/oticalume/otica-crm/internal/models"

// ClientPayload is the create/update body for a client. Every field is
// tri-state so PUT can distinguish omitted keys from explicit nulls.
type ClientPayload struct {
	Name           Field[string]            `json:"nome"`
	Phone          Field[string]            `json:"telefone"`
	Email          Field[string]            `json:"email"`
	CPF            Field[string]            `json:"cpf"`
	Gender         Field[string]            `json:"genero"`
	BirthDate      Field[string]            `json:"dataNascimento"`
	AcceptsContact Field[bool]              `json:"aceitaContato"`
	ClientType     Field[string]            `json:"tipoCliente"`
	Tag            Field[string]            `json:"etiqueta"`
	Interests      Field[[]string]          `json:"interesses"`
	Purchases      Field[[]PurchasePayload] `json:"compras"`
}

// PurchasePayload upserts by id: a payload carrying the id of an existing
// purchase updates it in place, otherwise a new purchase is appended.
type PurchasePayload struct {
	ID           Field[uint]                `json:"id"`
	Date         Field[string]              `json:"data"`
	Frame        Field[string]              `json:"armacao"`
	Lens         Field[string]              `json:"lente"`
	FrameValue   Field[float64]             `json:"valorArmacao"`
	LensValue    Field[float64]             `json:"valorLente"`
	Total        Field[float64]             `json:"valorTotal"`
	Invoice      Field[string]              `json:"ordemServico"`
	Prescription Field[models.Prescription] `json:"receita"`
	Contacts     Field[[]ContactPayload]    `json:"contatos"`
}

type ContactPayload struct {
	ID           Field[uint]   `json:"id"`
	ContactDate  Field[string] `json:"dataContato"`
	PurchaseDate Field[string] `json:"dataCompra"`
	MonthOffset  Field[int]    `json:"meses"`
	Completed    Field[bool]   `json:"completed"`
}

// ContactPatch is the only accepted body for PATCH /api/contatos/:id.
type ContactPatch struct {
	Completed Field[bool] `json:"completed"`
}
