// Package fulfillment contiene las reglas puras de la máquina de estados
// Pedido/Entrega/Nota de entrega. No toca persistencia: los casos de uso
// releen los documentos hermanos dentro de la misma transacción y delegan
// aquí el recálculo (nunca se confía en contadores cacheados).
package fulfillment

import "github.com/jhoicas/Distribucion-api/internal/domain/entity"

// transiciones legales por documento; cualquier otra combinación es un
// conflicto de estado y se rechaza antes de producir efectos.
var noteTransitions = map[string][]string{
	entity.NoteStatusInTransit: {entity.NoteStatusDelivered, entity.NoteStatusCancelled},
	entity.NoteStatusDelivered: {entity.NoteStatusInvoiced},
	entity.NoteStatusInvoiced:  {entity.NoteStatusDelivered}, // reversa al anular la factura
}

var deliveryTransitions = map[string][]string{
	entity.DeliveryStatusCreated:   {entity.DeliveryStatusScheduled, entity.DeliveryStatusCancelled},
	entity.DeliveryStatusScheduled: {entity.DeliveryStatusInTransit, entity.DeliveryStatusCancelled},
	entity.DeliveryStatusInTransit: {entity.DeliveryStatusDelivered, entity.DeliveryStatusScheduled},
	entity.DeliveryStatusDelivered: {entity.DeliveryStatusInvoiced},
	entity.DeliveryStatusInvoiced:  {entity.DeliveryStatusDelivered}, // reversa al anular la factura
}

// NoteCanTransition verifica una transición de la nota de entrega.
func NoteCanTransition(from, to string) bool {
	return contains(noteTransitions[from], to)
}

// DeliveryCanTransition verifica una transición de la entrega.
func DeliveryCanTransition(from, to string) bool {
	return contains(deliveryTransitions[from], to)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// OrderStatusAfterDelivery recalcula el estado del pedido según sus entregas
// hermanas: todas entregadas => DELIVERED; alguna => PARTIALLY_DELIVERED;
// ninguna => CONFIRMED. Las entregas anuladas no cuentan.
func OrderStatusAfterDelivery(deliveries []*entity.Delivery) string {
	total, delivered := 0, 0
	for _, d := range deliveries {
		if !d.Active() {
			continue
		}
		total++
		if d.DeliveredOrBeyond() {
			delivered++
		}
	}
	switch {
	case total == 0 || delivered == 0:
		return entity.OrderStatusConfirmed
	case delivered == total:
		return entity.OrderStatusDelivered
	default:
		return entity.OrderStatusPartiallyDelivered
	}
}

// OrderStatusAfterInvoicing recalcula el estado del pedido sobre el eje de
// facturación: misma regla todas/algunas/ninguna pero mirando INVOICED.
// Si ninguna entrega está facturada se conserva el estado de entrega.
func OrderStatusAfterInvoicing(deliveries []*entity.Delivery) string {
	total, invoiced := 0, 0
	for _, d := range deliveries {
		if !d.Active() {
			continue
		}
		total++
		if d.Status == entity.DeliveryStatusInvoiced {
			invoiced++
		}
	}
	switch {
	case total == 0 || invoiced == 0:
		return OrderStatusAfterDelivery(deliveries)
	case invoiced == total:
		return entity.OrderStatusInvoiced
	default:
		return entity.OrderStatusPartiallyInvoiced
	}
}
