package fulfillment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Distribucion-api/internal/domain/entity"
	"github.com/jhoicas/Distribucion-api/internal/domain/fulfillment"
)

// TestNoteTransitions recorre la tabla de transiciones de la nota de entrega:
// las legales pasan, cualquier otra combinación se rechaza.
func TestNoteTransitions(t *testing.T) {
	legal := [][2]string{
		{entity.NoteStatusInTransit, entity.NoteStatusDelivered},
		{entity.NoteStatusInTransit, entity.NoteStatusCancelled},
		{entity.NoteStatusDelivered, entity.NoteStatusInvoiced},
		{entity.NoteStatusInvoiced, entity.NoteStatusDelivered}, // reversa al anular factura
	}
	for _, tr := range legal {
		assert.True(t, fulfillment.NoteCanTransition(tr[0], tr[1]),
			"%s -> %s debe ser legal", tr[0], tr[1])
	}

	illegal := [][2]string{
		{entity.NoteStatusDelivered, entity.NoteStatusCancelled}, // tras entrega física no hay anulación
		{entity.NoteStatusDelivered, entity.NoteStatusInTransit},
		{entity.NoteStatusCancelled, entity.NoteStatusInTransit},
		{entity.NoteStatusCancelled, entity.NoteStatusDelivered},
		{entity.NoteStatusInvoiced, entity.NoteStatusCancelled},
		{entity.NoteStatusInTransit, entity.NoteStatusInTransit},
	}
	for _, tr := range illegal {
		assert.False(t, fulfillment.NoteCanTransition(tr[0], tr[1]),
			"%s -> %s debe rechazarse", tr[0], tr[1])
	}
}

// TestDeliveryTransitions cubre el retroceso IN_TRANSIT -> SCHEDULED (anulación
// de la nota) y la reversa INVOICED -> DELIVERED (anulación de la factura).
func TestDeliveryTransitions(t *testing.T) {
	assert.True(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusScheduled, entity.DeliveryStatusInTransit))
	assert.True(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusInTransit, entity.DeliveryStatusScheduled))
	assert.True(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusInTransit, entity.DeliveryStatusDelivered))
	assert.True(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusInvoiced, entity.DeliveryStatusDelivered))

	assert.False(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusDelivered, entity.DeliveryStatusScheduled))
	assert.False(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusDelivered, entity.DeliveryStatusCancelled))
	assert.False(t, fulfillment.DeliveryCanTransition(entity.DeliveryStatusCancelled, entity.DeliveryStatusScheduled))
}

func delivery(status string) *entity.Delivery {
	return &entity.Delivery{Status: status}
}

// TestOrderStatusAfterDelivery aplica la regla todas/algunas/ninguna releyendo
// las entregas hermanas; las anuladas no cuentan.
func TestOrderStatusAfterDelivery(t *testing.T) {
	// ninguna entregada
	assert.Equal(t, entity.OrderStatusConfirmed, fulfillment.OrderStatusAfterDelivery([]*entity.Delivery{
		delivery(entity.DeliveryStatusScheduled),
		delivery(entity.DeliveryStatusInTransit),
	}))

	// algunas entregadas
	assert.Equal(t, entity.OrderStatusPartiallyDelivered, fulfillment.OrderStatusAfterDelivery([]*entity.Delivery{
		delivery(entity.DeliveryStatusDelivered),
		delivery(entity.DeliveryStatusScheduled),
	}))

	// todas entregadas
	assert.Equal(t, entity.OrderStatusDelivered, fulfillment.OrderStatusAfterDelivery([]*entity.Delivery{
		delivery(entity.DeliveryStatusDelivered),
		delivery(entity.DeliveryStatusInvoiced),
	}))

	// las anuladas no cuentan: una entregada + una anulada = todas entregadas
	assert.Equal(t, entity.OrderStatusDelivered, fulfillment.OrderStatusAfterDelivery([]*entity.Delivery{
		delivery(entity.DeliveryStatusDelivered),
		delivery(entity.DeliveryStatusCancelled),
	}))

	// solo anuladas: vuelve a CONFIRMED
	assert.Equal(t, entity.OrderStatusConfirmed, fulfillment.OrderStatusAfterDelivery([]*entity.Delivery{
		delivery(entity.DeliveryStatusCancelled),
	}))
}

// TestOrderStatusAfterInvoicing usa la misma regla sobre el eje de facturación;
// sin entregas facturadas conserva el estado calculado por entrega.
func TestOrderStatusAfterInvoicing(t *testing.T) {
	assert.Equal(t, entity.OrderStatusInvoiced, fulfillment.OrderStatusAfterInvoicing([]*entity.Delivery{
		delivery(entity.DeliveryStatusInvoiced),
		delivery(entity.DeliveryStatusInvoiced),
	}))

	assert.Equal(t, entity.OrderStatusPartiallyInvoiced, fulfillment.OrderStatusAfterInvoicing([]*entity.Delivery{
		delivery(entity.DeliveryStatusInvoiced),
		delivery(entity.DeliveryStatusDelivered),
	}))

	// ninguna facturada: cae al eje de entrega
	assert.Equal(t, entity.OrderStatusPartiallyDelivered, fulfillment.OrderStatusAfterInvoicing([]*entity.Delivery{
		delivery(entity.DeliveryStatusDelivered),
		delivery(entity.DeliveryStatusScheduled),
	}))
}
