// Package discountfn implements the checkout-time discount function: a pure
// mapping from a cart snapshot to the discount operations that zero the
// price of lines flagged as gifts. It performs no network calls and holds no
// state; the sandboxed checkout runtime invokes it once per pricing pass.
package discountfn

// DiscountClassProduct is the discount class this function participates in.
const DiscountClassProduct = "PRODUCT"

const giftMessage = "Free gift"

// Input is the cart snapshot handed to the function by the checkout runtime.
// The gift attribute lookup is already resolved per line by the input query.
type Input struct {
	Cart            InputCart `json:"cart"`
	DiscountClasses []string  `json:"discountClasses"`
}

type InputCart struct {
	Lines []InputCartLine `json:"lines"`
}

type InputCartLine struct {
	ID            string     `json:"id"`
	GiftAttribute *Attribute `json:"giftAttribute"`
}

type Attribute struct {
	Value *string `json:"value"`
}

// IsGift reports whether the line's resolved gift attribute is set.
func (l InputCartLine) IsGift() bool {
	return l.GiftAttribute != nil && l.GiftAttribute.Value != nil && *l.GiftAttribute.Value == "true"
}

// Output is the list of discount operations returned to the runtime.
type Output struct {
	Operations []Operation `json:"operations"`
}

type Operation struct {
	ProductDiscountsAdd *ProductDiscountsAddOperation `json:"productDiscountsAdd,omitempty"`
}

type ProductDiscountsAddOperation struct {
	Candidates        []ProductDiscountCandidate `json:"candidates"`
	SelectionStrategy string                     `json:"selectionStrategy"`
}

type ProductDiscountCandidate struct {
	Message string                  `json:"message"`
	Targets []ProductDiscountTarget `json:"targets"`
	Value   ProductDiscountValue    `json:"value"`
}

type ProductDiscountTarget struct {
	CartLine *CartLineTarget `json:"cartLine,omitempty"`
}

type CartLineTarget struct {
	ID string `json:"id"`
}

type ProductDiscountValue struct {
	Percentage Percentage `json:"percentage"`
}

type Percentage struct {
	Value float64 `json:"value"`
}

// Run evaluates the function. It emits zero operations unless the Product
// discount class is active and at least one line carries the gift flag;
// otherwise one operation holding a 100%-off candidate per gift line, each
// targeting that line alone. Candidates never overlap, so the first-match
// selection strategy is inert here.
func Run(in Input) Output {
	out := Output{Operations: []Operation{}}

	if !hasProductClass(in.DiscountClasses) || len(in.Cart.Lines) == 0 {
		return out
	}

	var candidates []ProductDiscountCandidate
	for _, line := range in.Cart.Lines {
		if !line.IsGift() {
			continue
		}
		candidates = append(candidates, ProductDiscountCandidate{
			Message: giftMessage,
			Targets: []ProductDiscountTarget{{CartLine: &CartLineTarget{ID: line.ID}}},
			Value:   ProductDiscountValue{Percentage: Percentage{Value: 100}},
		})
	}
	if len(candidates) == 0 {
		return out
	}

	out.Operations = append(out.Operations, Operation{
		ProductDiscountsAdd: &ProductDiscountsAddOperation{
			Candidates:        candidates,
			SelectionStrategy: "FIRST",
		},
	})
	return out
}

func hasProductClass(classes []string) bool {
	for _, c := range classes {
		if c == DiscountClassProduct {
			return true
		}
	}
	return false
}
