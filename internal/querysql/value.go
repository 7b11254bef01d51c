package querysql

import (
	"fmt"

	"github.com/roach88/launchdeck/internal/ir"
	"github.com/roach88/launchdeck/internal/mission"
)

// ParamFromValue converts a normalized literal to its column representation.
// Dates are YYYY-MM-DD text, decimals are integer thousandths.
func ParamFromValue(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRDecimal:
		return int64(val), nil
	case ir.IRDate:
		return val.String(), nil
	case ir.IRBool:
		return bool(val), nil
	case nil, ir.IRNull:
		return nil, fmt.Errorf("NULL cannot be used as a comparison parameter")
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// ValueFromColumn converts a scanned column of kind k back to an IR value.
// A nil column is ir.IRNull.
func ValueFromColumn(k mission.Kind, col any) (ir.IRValue, error) {
	if col == nil {
		return ir.IRNull{}, nil
	}

	switch k {
	case mission.KindString, mission.KindOutcome:
		switch v := col.(type) {
		case string:
			return ir.IRString(v), nil
		case []byte:
			return ir.IRString(v), nil
		}
	case mission.KindDate:
		var s string
		switch v := col.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		default:
			return nil, fmt.Errorf("date column: unexpected %T", col)
		}
		return ir.ParseIRDate(s)
	case mission.KindInt:
		if v, ok := col.(int64); ok {
			return ir.IRInt(v), nil
		}
	case mission.KindDecimal:
		if v, ok := col.(int64); ok {
			return ir.IRDecimal(v), nil
		}
	}
	return nil, fmt.Errorf("%s column: unexpected %T", k, col)
}
