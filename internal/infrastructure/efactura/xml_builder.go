package efactura

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
)

// Namespaces UBL 2.1.
const (
	NsInvoice = "urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"
	NsCac     = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	NsCbc     = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	NsExt     = "urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2"
)

// XMLBuilder construye el documento UBL 2.1 de la factura electrónica (sin firma).
// El resultado es el borrador que se envía al proveedor tecnológico; el estado
// de la factura pasa a DRAFT cuando el XML se genera con éxito.
type XMLBuilder struct{}

// NewXMLBuilder crea el builder.
func NewXMLBuilder() *XMLBuilder {
	return &XMLBuilder{}
}

// Build genera el []byte del documento Invoice UBL 2.1 desde los snapshots
// congelados de la factura. Nunca relee empresa ni cliente en vivo.
func (b *XMLBuilder) Build(inv *entity.Invoice, items []*entity.InvoiceItem) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("efactura: factura nil")
	}
	if inv.CompanySnapshot.Name == "" || inv.ClientSnapshot.Name == "" {
		return nil, fmt.Errorf("efactura: snapshots incompletos en factura %s", inv.ID)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Invoice")
	root.CreateAttr("xmlns", NsInvoice)
	root.CreateAttr("xmlns:cac", NsCac)
	root.CreateAttr("xmlns:cbc", NsCbc)
	root.CreateAttr("xmlns:ext", NsExt)

	// ext:UBLExtensions como primer hijo: el firmador inyecta ds:Signature aquí.
	ext := root.CreateElement("ext:UBLExtensions")
	ext.CreateElement("ext:UBLExtension").CreateElement("ext:ExtensionContent")

	number := fmt.Sprintf("%s-%06d", inv.Number.Series, inv.Number.Number)
	cbc(root, "UBLVersionID", "2.1")
	cbc(root, "CustomizationID", "10")
	cbc(root, "ID", number)
	cbc(root, "IssueDate", inv.IssueDate.Format("2006-01-02"))
	cbc(root, "IssueTime", inv.IssueDate.Format("15:04:05-07:00"))
	cbc(root, "DueDate", inv.DueDate.Format("2006-01-02"))
	cbc(root, "DocumentCurrencyCode", "COP")
	cbc(root, "LineCountNumeric", strconv.Itoa(len(items)))

	b.writeParty(root, "cac:AccountingSupplierParty", partyData{
		name:    inv.CompanySnapshot.Name,
		taxID:   inv.CompanySnapshot.TaxID,
		address: inv.CompanySnapshot.Address,
		city:    inv.CompanySnapshot.City,
		email:   inv.CompanySnapshot.Email,
	})
	b.writeParty(root, "cac:AccountingCustomerParty", partyData{
		name:    inv.ClientSnapshot.Name,
		taxID:   inv.ClientSnapshot.TaxID,
		address: inv.ClientSnapshot.Address,
		city:    inv.ClientSnapshot.City,
		email:   inv.ClientSnapshot.Email,
	})

	// cac:PaymentMeans: crédito con fecha de vencimiento (condiciones del cliente)
	pm := root.CreateElement("cac:PaymentMeans")
	cbc(pm, "ID", "2")
	cbc(pm, "PaymentDueDate", inv.DueDate.Format("2006-01-02"))
	if inv.CompanySnapshot.BankAccount != "" {
		cbc(pm, "PaymentID", inv.CompanySnapshot.BankAccount)
	}

	// cac:TaxTotal con el IVA agregado
	taxTotal := root.CreateElement("cac:TaxTotal")
	amount := cbc(taxTotal, "TaxAmount", inv.Totals.Overall.VAT.StringFixed(2))
	amount.CreateAttr("currencyID", "COP")

	// cac:LegalMonetaryTotal
	lmt := root.CreateElement("cac:LegalMonetaryTotal")
	writeAmount(lmt, "LineExtensionAmount", inv.Totals.Overall.Subtotal.StringFixed(2))
	writeAmount(lmt, "TaxExclusiveAmount", inv.Totals.Overall.Subtotal.StringFixed(2))
	writeAmount(lmt, "TaxInclusiveAmount", inv.GrandTotal.StringFixed(2))
	writeAmount(lmt, "PayableAmount", inv.GrandTotal.StringFixed(2))

	for i, it := range items {
		line := root.CreateElement("cac:InvoiceLine")
		cbc(line, "ID", strconv.Itoa(i+1))
		qty := cbc(line, "InvoicedQuantity", it.Quantity.String())
		qty.CreateAttr("unitCode", "EA")
		writeAmount(line, "LineExtensionAmount", it.Subtotal.StringFixed(2))

		taxEl := line.CreateElement("cac:TaxTotal")
		writeAmount(taxEl, "TaxAmount", it.VATAmount.StringFixed(2))

		item := line.CreateElement("cac:Item")
		cbc(item, "Description", it.Description)
		if it.ProductID != "" {
			sid := item.CreateElement("cac:SellersItemIdentification")
			cbc(sid, "ID", it.ProductID)
		}

		price := line.CreateElement("cac:Price")
		writeAmount(price, "PriceAmount", it.UnitPrice.StringFixed(2))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

type partyData struct {
	name, taxID, address, city, email string
}

func (b *XMLBuilder) writeParty(root *etree.Element, tag string, d partyData) {
	wrap := root.CreateElement(tag)
	party := wrap.CreateElement("cac:Party")

	pn := party.CreateElement("cac:PartyName")
	cbc(pn, "Name", d.name)

	if d.taxID != "" {
		scheme := party.CreateElement("cac:PartyTaxScheme")
		cbc(scheme, "RegistrationName", d.name)
		cbc(scheme, "CompanyID", d.taxID)
	}
	if d.address != "" || d.city != "" {
		loc := party.CreateElement("cac:PhysicalLocation").CreateElement("cac:Address")
		if d.city != "" {
			cbc(loc, "CityName", d.city)
		}
		if d.address != "" {
			addrLine := loc.CreateElement("cac:AddressLine")
			cbc(addrLine, "Line", d.address)
		}
	}
	if d.email != "" {
		contact := party.CreateElement("cac:Contact")
		cbc(contact, "ElectronicMail", d.email)
	}
}

func cbc(parent *etree.Element, local, text string) *etree.Element {
	el := parent.CreateElement("cbc:" + local)
	el.SetText(text)
	return el
}

func writeAmount(parent *etree.Element, local, value string) {
	el := cbc(parent, local, value)
	el.CreateAttr("currencyID", "COP")
}
