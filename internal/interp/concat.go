package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/halsted/minijvm/internal/runtime"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
)

const concatPlaceholder = 0x01

// invokeDynamic supports exactly one bootstrap semantics:
// makeConcatWithConstants. The recipe's 0x01 bytes mark substitution
// points; operands are popped most-recently-pushed-first and substituted
// left to right into the recipe.
func (e *Engine) invokeDynamic(f *runtime.Frame, cpIdx uint16) error {
	info, err := f.Class.ConstantPool.InvokeDynamic(cpIdx)
	if err != nil {
		return vmerr.Decode("interp.invokedynamic", err)
	}

	if int(info.BootstrapMethodAttrIndex) >= len(f.Class.Bootstrap) {
		return vmerr.Invariant("interp.invokedynamic", fmt.Errorf("bootstrap method index %d out of range", info.BootstrapMethodAttrIndex))
	}
	bsm := f.Class.Bootstrap[info.BootstrapMethodAttrIndex]
	if len(bsm.Arguments) == 0 {
		return vmerr.Execution("interp.invokedynamic", fmt.Errorf("bootstrap method has no recipe argument"))
	}

	recipe, err := e.recipeString(f, bsm.Arguments[0])
	if err != nil {
		return err
	}

	placeholders := strings.Count(recipe, string(rune(concatPlaceholder)))
	operands := make([]string, placeholders)
	for i := 0; i < placeholders; i++ {
		c, err := f.Stack.Pop()
		if err != nil {
			return execErr(f, err)
		}
		s, err := e.operandText(c)
		if err != nil {
			return err
		}
		operands[i] = s
	}

	var b strings.Builder
	next := 0
	for i := 0; i < len(recipe); i++ {
		if recipe[i] == concatPlaceholder {
			b.WriteString(operands[next])
			next++
			continue
		}
		b.WriteByte(recipe[i])
	}

	ref, err := e.Objects.CreateString(b.String())
	if err != nil {
		return vmerr.Invariant("interp.invokedynamic", err)
	}
	return checkedPushErr(f, f.Stack.Push(vmvalue.Reference(ref)))
}

func (e *Engine) recipeString(f *runtime.Frame, cpIdx uint16) (string, error) {
	if s, err := f.Class.ConstantPool.StringValue(cpIdx); err == nil {
		return s, nil
	}
	s, err := f.Class.ConstantPool.Utf8At(cpIdx)
	if err != nil {
		return "", vmerr.Decode("interp.invokedynamic.recipe", err)
	}
	return s, nil
}

// operandText decimal-encodes an integer operand or dereferences a
// reference operand's string value.
func (e *Engine) operandText(c vmvalue.Cell) (string, error) {
	if c.Tag == vmvalue.TagRef {
		return e.stringOf(c)
	}
	if c.IsInteger() {
		return strconv.FormatInt(c.AsInt64(), 10), nil
	}
	return "", vmerr.Execution("interp.invokedynamic", fmt.Errorf("unsupported concat operand tag %s", c.Tag))
}
