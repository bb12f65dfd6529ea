package pincatalog

// NumPins is the number of positions on the header. Index 0 of the tables is unused.
const NumPins = 40

// Power rail labels
const (
	Rail3V3 = "3.3V"
	Rail5V  = "5V"
	RailGND = "GND"
)

var names = [NumPins + 1]string{"",
	Rail3V3, Rail5V,
	"2A0", Rail5V,
	"2A1", RailGND,
	"4D1", "4C4",
	RailGND, "4C3",
	"4D6", "4D2",
	"2D3", RailGND,
	"2A4", "2A6",
	Rail3V3, "2A3",
	"2B2", RailGND,
	"2B1", "2A2",
	"2B3", "2B4",
	RailGND, "2A5",
	"2A7", "2B0",
	"1A4", RailGND,
	"1A2", "1A1",
	"4B3", RailGND,
	"4B5", "4B4",
	"4B0", "4B1",
	RailGND, "4B2",
}

var powerPins = [NumPins + 1]bool{
	1: true, 2: true, 4: true, 6: true, 9: true, 14: true,
	17: true, 20: true, 25: true, 30: true, 34: true, 39: true,
}

var functions = [NumPins + 1][NumAlt]string{
	3:  {"I/O", "VOP_D0", "I2C2_SDA", "CIF_D0"},
	5:  {"I/O", "VOP_D1", "I2C2_SCL", "CIF_D1"},
	7:  {"I/O", "DP_HP", "", ""},
	8:  {"I/O", "TXD", "HDCP_TX", ""},
	10: {"I/O", "RXD", "HDCP_RX", ""},
	11: {"I/O", "", "", ""},
	12: {"I/O", "", "", ""},
	13: {"I/O", "SD_PWREN", "", ""},
	15: {"I/O", "VOP_D4", "JTAG_TDO", "CIF_D4"},
	16: {"I/O", "VOP_D6", "JTAG_TMS", "CIF_D6"},
	18: {"I/O", "VOP_D3", "JTAG_TDI", "CIF_D3"},
	19: {"I/O", "MOSI", "I2C6_SCL", "CIF_CLKI"},
	21: {"I/O", "MISO", "I2C6_SDA", "CIF_HREF"},
	22: {"I/O", "VOP_D2", "JTAG_TRS", "CIF_D2"},
	23: {"I/O", "CLK", "VOP_DEN", "CIF_CLKO"},
	24: {"I/O", "CS", "", ""},
	26: {"I/O", "VOP_D5", "JTAG_TCK", "CIF_D5"},
	27: {"I/O", "VOP_D7", "I2C7_SDA", "CIF_D7"},
	28: {"I/O", "VOP_DCLK", "I2C7_SCL", "CIF_VSYN"},
	29: {"I/O", "ISP0_PLT", "ISP1_PLT", ""},
	31: {"I/O", "ISP0_FTI", "ISP1_FTI", ""},
	32: {"I/O", "ISP0_ST", "ISP1_ST", "TCPD_CC"},
	33: {"I/O", "SDMMC_D3", "CJTAGTMS", "HJTAGTDO"},
	35: {"I/O", "SDMMCCMD", "MJTAGTMS", "HJTAGTMS"},
	36: {"I/O", "SDMMCCLK", "MJTAGTCK", "HJTAGTCK"},
	37: {"I/O", "SDMMC_D0", "TXD2", ""},
	38: {"I/O", "SDMMC_D1", "RXD2", "HJTAGTRS"},
	40: {"I/O", "SDMMC_D2", "CJTAGTCK", "HJTAGTDI"},
}
