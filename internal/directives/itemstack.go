package directives

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	MinStackQuantity = 1
	MaxStackQuantity = 64
)

// ItemStack is one quantity of one item, optionally carrying structured
// component data in the bracket syntax the prompt teaches the model:
//
//	24 item:emerald
//	1 item:enchanted_book[stored_enchantments={unbreaking:3}]
type ItemStack struct {
	Quantity   int
	ItemID     string
	Components map[string]string // Raw component values, unparsed
	Raw        string            // The original encoding
}

func parseItemStack(encoded string) (ItemStack, error) {

	stack := ItemStack{Raw: encoded}

	fields := strings.SplitN(strings.TrimSpace(encoded), ` `, 2)
	if len(fields) != 2 {
		return stack, fmt.Errorf(`item stack %q is not "{quantity} {item}"`, encoded)
	}

	qty, err := strconv.Atoi(fields[0])
	if err != nil {
		return stack, fmt.Errorf(`item stack %q has a non-numeric quantity`, encoded)
	}
	if qty < MinStackQuantity || qty > MaxStackQuantity {
		return stack, fmt.Errorf(`item stack %q quantity %d outside %d-%d`, encoded, qty, MinStackQuantity, MaxStackQuantity)
	}
	stack.Quantity = qty

	item := strings.TrimSpace(fields[1])

	if open := strings.IndexByte(item, '['); open >= 0 {
		if !strings.HasSuffix(item, `]`) {
			return stack, fmt.Errorf(`item stack %q has an unterminated component block`, encoded)
		}
		components, err := parseComponents(item[open+1 : len(item)-1])
		if err != nil {
			return stack, fmt.Errorf(`item stack %q: %v`, encoded, err)
		}
		stack.Components = components
		item = item[:open]
	}

	if item == `` {
		return stack, fmt.Errorf(`item stack %q has an empty item id`, encoded)
	}
	stack.ItemID = item

	return stack, nil
}

// parseComponents splits "key={...},key2=value" pairs, honoring nesting so
// commas inside braces or brackets don't split a value.
func parseComponents(body string) (map[string]string, error) {

	components := map[string]string{}

	depth := 0
	fieldStart := 0

	flush := func(field string) error {
		field = strings.TrimSpace(field)
		if field == `` {
			return nil
		}
		eq := strings.IndexByte(field, '=')
		if eq <= 0 {
			return fmt.Errorf(`component %q is not "key=value"`, field)
		}
		components[strings.TrimSpace(field[:eq])] = strings.TrimSpace(field[eq+1:])
		return nil
	}

	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 0 {
				if err := flush(body[fieldStart:i]); err != nil {
					return nil, err
				}
				fieldStart = i + 1
			}
		}
	}

	if depth != 0 {
		return nil, fmt.Errorf(`unbalanced component data %q`, body)
	}

	if err := flush(body[fieldStart:]); err != nil {
		return nil, err
	}

	return components, nil
}
