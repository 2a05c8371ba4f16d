package parser

// Precedence orders binding strength from loosest to tightest.
type Precedence int

const (
	PrecLowest Precedence = iota
	PrecSequence
	PrecAssign
	PrecTernary
	PrecLogicalOr
	PrecLogicalAnd
	PrecBitOr
	PrecBitXor
	PrecBitAnd
	PrecEquality
	PrecRelational
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecExponent
	PrecUnary
	PrecCall
	PrecMember
)

type Assoc int

const (
	AssocLeft Assoc = iota
	AssocRight
)

type operatorInfo struct {
	prec  Precedence
	assoc Assoc
}

var binaryOperators = map[TokenKind]operatorInfo{
	TokenOr:       {PrecLogicalOr, AssocLeft},
	TokenAnd:      {PrecLogicalAnd, AssocLeft},
	TokenBitOr:    {PrecBitOr, AssocLeft},
	TokenBitXor:   {PrecBitXor, AssocLeft},
	TokenBitAnd:   {PrecBitAnd, AssocLeft},
	TokenEQ:       {PrecEquality, AssocLeft},
	TokenNE:       {PrecEquality, AssocLeft},
	TokenLT:       {PrecRelational, AssocLeft},
	TokenLE:       {PrecRelational, AssocLeft},
	TokenGT:       {PrecRelational, AssocLeft},
	TokenGE:       {PrecRelational, AssocLeft},
	TokenShl:      {PrecShift, AssocLeft},
	TokenShr:      {PrecShift, AssocLeft},
	TokenUShr:     {PrecShift, AssocLeft},
	TokenPlus:     {PrecAdditive, AssocLeft},
	TokenMinus:    {PrecAdditive, AssocLeft},
	TokenConcat:   {PrecAdditive, AssocLeft},
	TokenStar:     {PrecMultiplicative, AssocLeft},
	TokenSlash:    {PrecMultiplicative, AssocLeft},
	TokenPercent:  {PrecMultiplicative, AssocLeft},
	TokenStarStar: {PrecExponent, AssocRight},
}

func binaryOperator(k TokenKind) (operatorInfo, bool) {
	info, ok := binaryOperators[k]
	return info, ok
}

// rightBindingPower is the minimum precedence of the right operand.
func (o operatorInfo) rightBindingPower() Precedence {
	if o.assoc == AssocRight {
		return o.prec
	}
	return o.prec + 1
}
