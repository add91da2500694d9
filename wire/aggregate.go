package wire

import (
	"fmt"

	"github.com/anirudhraja/fastrpc/value"
)

// Smallest possible encodings, used to cap pre-allocation:
// a struct member is a name length byte plus a tag, an array item a tag.
const (
	minMemberSize = 2
	minItemSize   = 1
)

// AggregateDecoder handles struct and array decoding operations
type AggregateDecoder struct {
	decoder *Decoder
}

// NewAggregateDecoder creates a new aggregate decoder
func NewAggregateDecoder(d *Decoder) *AggregateDecoder {
	return &AggregateDecoder{decoder: d}
}

// DecodeStruct decodes a countWidth-byte member count followed by that
// many name/value pairs. A repeated name overwrites the earlier member
// unless Config.StrictStructKeys is set.
func (ad *AggregateDecoder) DecodeStruct(countWidth int) (value.Value, error) {
	d := ad.decoder
	fd := NewFixedDecoder(d)
	count, err := fd.DecodeLength(countWidth, "struct member count")
	if err != nil {
		return value.Value{}, err
	}

	if err := d.depth.enter(); err != nil {
		return value.Value{}, err
	}
	defer d.depth.exit()

	bd := NewBytesDecoder(d)
	members := make(map[string]value.Value, capacityHint(count, d.Remaining(), minMemberSize))
	for i := uint64(0); i < count; i++ {
		name, err := bd.DecodeName("member name")
		if err != nil {
			return value.Value{}, wrapWithIndex(err, i)
		}

		member, err := d.DecodeValue()
		if err != nil {
			return value.Value{}, wrapWithField(err, name)
		}

		if _, exists := members[name]; exists && d.cfg.StrictStructKeys {
			return value.Value{}, wrapWithField(fmt.Errorf("%w %q", ErrDuplicateField, name), name)
		}
		members[name] = member
	}

	return value.Struct(members), nil
}

// DecodeArray decodes a countWidth-byte item count followed by that many
// values, in order.
func (ad *AggregateDecoder) DecodeArray(countWidth int) (value.Value, error) {
	d := ad.decoder
	fd := NewFixedDecoder(d)
	count, err := fd.DecodeLength(countWidth, "array item count")
	if err != nil {
		return value.Value{}, err
	}

	if err := d.depth.enter(); err != nil {
		return value.Value{}, err
	}
	defer d.depth.exit()

	items := make([]value.Value, 0, capacityHint(count, d.Remaining(), minItemSize))
	for i := uint64(0); i < count; i++ {
		item, err := d.DecodeValue()
		if err != nil {
			return value.Value{}, wrapWithIndex(err, i)
		}
		items = append(items, item)
	}

	return value.Array(items...), nil
}
