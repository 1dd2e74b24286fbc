package usecase

import "shophub/internal/domain/model"

// 1明細分の配送料。
// 配送料0なら寄与なし。increase_delivery_with_qtyがtrueなら数量に比例、
// falseなら数量によらず1回分だけ。
// 純粋関数なのでトランザクションの外（見積り）でもそのまま使える。
func DeliveryContribution(p model.Product, qty int64) float64 {
	if p.DeliveryCharges == 0 {
		return 0
	}
	if p.IncreaseDeliveryWithQty {
		return p.DeliveryCharges * float64(qty)
	}
	return p.DeliveryCharges
}
