package cpu

// Word is a single decimal machine word.
type Word uint64

// Sizing of the classic Johnny machine, used when an image does not say
// otherwise.
const (
	JOHNNY_HI_MAX      = Word(19)
	JOHNNY_LO_MAX      = Word(999)
	JOHNNY_MC_ADDR_MAX = Word(199)
)

// Geometry holds the sizing limits of a machine and the modulus derived
// from them. It is fixed for the lifetime of a Cpu.
type Geometry struct {
	HiMax     Word // Largest hi digit group.
	LoMax     Word // Largest lo digit group, and the last RAM address.
	McAddrMax Word // Last microcode store address.
	Modulus   Word // 10^digits(LoMax)
}

// NewGeometry derives the modulus for the given limits.
func NewGeometry(hiMax, loMax, mcAddrMax Word) (geom Geometry) {
	geom = Geometry{
		HiMax:     hiMax,
		LoMax:     loMax,
		McAddrMax: mcAddrMax,
		Modulus:   10,
	}

	for rest := loMax / 10; rest > 0; rest /= 10 {
		geom.Modulus *= 10
	}

	return
}

// JohnnyGeometry is the default 19/999/199 geometry.
func JohnnyGeometry() Geometry {
	return NewGeometry(JOHNNY_HI_MAX, JOHNNY_LO_MAX, JOHNNY_MC_ADDR_MAX)
}

// Hi returns the high digit group of a word.
func (geom Geometry) Hi(value Word) Word {
	return value / geom.Modulus
}

// Lo returns the low digit group of a word.
func (geom Geometry) Lo(value Word) Word {
	return value % geom.Modulus
}

// Join builds a word from its digit groups.
func (geom Geometry) Join(hi, lo Word) Word {
	return hi*geom.Modulus + lo
}

// Max is the largest value the accumulator may hold.
func (geom Geometry) Max() Word {
	return geom.Join(geom.HiMax, geom.LoMax)
}
