package importer

import "tradejournal/internal/domain"

// Field is a canonical trade attribute a broker CSV column can map to
type Field string

const (
	FieldSymbol         Field = "symbol"
	FieldSide           Field = "side"
	FieldQuantity       Field = "quantity"
	FieldEntryPrice     Field = "entryPrice"
	FieldExitPrice      Field = "exitPrice"
	FieldEntryDate      Field = "entryDate"
	FieldExitDate       Field = "exitDate"
	FieldCommission     Field = "commission"
	FieldInstrumentType Field = "instrumentType"
	FieldStrategy       Field = "strategy"
	FieldNotes          Field = "notes"
)

// Profile describes how to read one broker's CSV export. It is pure
// data: per canonical field an ordered list of acceptable column names
// (first one present in the row wins, matched case-insensitively), plus
// fixed defaults for fields the broker never exports. Adding a broker
// means adding a Profile, never touching the normalizer.
type Profile struct {
	Name     string
	Aliases  map[Field][]string
	Defaults map[Field]string
}

const (
	// BrokerGeneric names the default column layout used by exports
	// from this application and most spreadsheet tools.
	BrokerGeneric            = "generic"
	BrokerInteractiveBrokers = "interactive_brokers"
	BrokerTradeStation       = "tradestation"
)

var genericProfile = Profile{
	Name: BrokerGeneric,
	Aliases: map[Field][]string{
		FieldSymbol:         {"Symbol", "symbol"},
		FieldSide:           {"Side", "side"},
		FieldQuantity:       {"Quantity", "quantity"},
		FieldEntryPrice:     {"EntryPrice", "entryPrice", "Price", "price"},
		FieldExitPrice:      {"ExitPrice", "exitPrice"},
		FieldEntryDate:      {"EntryDate", "entryDate", "Date", "date"},
		FieldExitDate:       {"ExitDate", "exitDate"},
		FieldCommission:     {"Commission", "commission"},
		FieldInstrumentType: {"InstrumentType", "instrumentType"},
		FieldStrategy:       {"Strategy", "strategy"},
		FieldNotes:          {"Notes", "notes"},
	},
}

var profiles = map[string]Profile{
	BrokerGeneric: genericProfile,

	// IB flex-query exports: BUY/SELL side column, single Price column,
	// asset category doubles as the instrument type.
	BrokerInteractiveBrokers: {
		Name: BrokerInteractiveBrokers,
		Aliases: map[Field][]string{
			FieldSymbol:         {"Symbol", "symbol"},
			FieldSide:           {"Side", "side"},
			FieldQuantity:       {"Quantity", "quantity"},
			FieldEntryPrice:     {"Price", "price"},
			FieldExitPrice:      {"ExitPrice"},
			FieldEntryDate:      {"DateTime", "dateTime"},
			FieldExitDate:       {"ExitDateTime"},
			FieldCommission:     {"Commission", "commission"},
			FieldInstrumentType: {"AssetCategory"},
		},
	},

	// TradeStation uses abbreviated headers and only exports equities
	BrokerTradeStation: {
		Name: BrokerTradeStation,
		Aliases: map[Field][]string{
			FieldSymbol:     {"Symbol"},
			FieldSide:       {"BuySell"},
			FieldQuantity:   {"Qty"},
			FieldEntryPrice: {"Price"},
			FieldExitPrice:  {"ExitPrice"},
			FieldEntryDate:  {"ExecTime"},
			FieldCommission: {"Comm"},
		},
		Defaults: map[Field]string{
			FieldInstrumentType: string(domain.InstrumentStock),
		},
	},
}

// ProfileFor resolves a broker identifier to its profile. Unknown
// brokers fall back to the generic layout rather than failing the
// upload, matching how manual exports are usually shaped anyway.
func ProfileFor(broker string) Profile {
	if p, ok := profiles[broker]; ok {
		return p
	}
	return genericProfile
}

// Brokers lists the broker identifiers with a dedicated profile
func Brokers() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	return names
}
