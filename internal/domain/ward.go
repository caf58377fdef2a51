package domain

// Block 病区分组代码
type Block string

const (
	BlockA           Block = "A"
	BlockB           Block = "B"
	BlockC           Block = "C"
	BlockDiagnostics Block = "D"
	BlockReanimation Block = "R"
)

// BlockOrder is the fixed presentation order of ward blocks.
var BlockOrder = []Block{BlockA, BlockB, BlockC, BlockDiagnostics, BlockReanimation}

// Valid reports whether b is one of the known block codes.
func (b Block) Valid() bool {
	for _, known := range BlockOrder {
		if b == known {
			return true
		}
	}
	return false
}

// Ward 病房（对应 wards 表）
type Ward struct {
	WardID    string `json:"ward_id" db:"ward_id"`
	Name      string `json:"name" db:"name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
	Block     Block  `json:"block" db:"block"`
}

// Doctor 医生（对应 doctors 表）
type Doctor struct {
	DoctorID  string `json:"doctor_id" db:"doctor_id"`
	FullName  string `json:"full_name" db:"full_name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// Title returns the display title of a block.
func (b Block) Title() string {
	switch b {
	case BlockDiagnostics:
		return "Diagnostics"
	case BlockReanimation:
		return "Reanimation"
	}
	return "Block " + string(b)
}
