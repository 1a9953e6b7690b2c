// Package lipglosstable renders a decoded class file as styled,
// aligned terminal output: constant pool, fields, and per-method
// bytecode listings. It never touches execution state; it is a read-only
// projection of classfile.ClassFile for the disasm command.
package lipglosstable

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/halsted/minijvm/internal/classfile"
	"github.com/halsted/minijvm/internal/interp"
)

var (
	headingColor = lipgloss.Color("#4682B4")
	mutedColor   = lipgloss.Color("#888888")
	accentColor  = lipgloss.Color("#228B22")

	headingStyle = lipgloss.NewStyle().Foreground(headingColor).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	accentStyle  = lipgloss.NewStyle().Foreground(accentColor)
)

// RenderClass produces the full disassembly view: header, constant pool,
// fields, and one instruction listing per method.
func RenderClass(c *classfile.ClassFile) string {
	var b strings.Builder

	fmt.Fprintln(&b, headingStyle.Render(fmt.Sprintf("class %s", c.BinaryName)))
	if c.SuperName != "" {
		fmt.Fprintln(&b, mutedStyle.Render(fmt.Sprintf("  extends %s", c.SuperName)))
	}
	fmt.Fprintln(&b, mutedStyle.Render(fmt.Sprintf("  major/minor %d.%d", c.MajorVersion, c.MinorVersion)))
	b.WriteString("\n")

	b.WriteString(renderConstantPool(c))
	b.WriteString("\n")
	b.WriteString(renderFields(c))
	b.WriteString("\n")
	b.WriteString(renderMethods(c))

	return b.String()
}

func renderConstantPool(c *classfile.ClassFile) string {
	var b strings.Builder
	fmt.Fprintln(&b, headingStyle.Render("constant pool"))
	for i := 1; i < c.ConstantPool.Count(); i++ {
		raw, err := c.ConstantPool.RawAt(uint16(i))
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "  %s\n", formatConstant(c, uint16(i), raw))
	}
	return b.String()
}

func formatConstant(c *classfile.ClassFile, idx uint16, raw classfile.Constant) string {
	tagName := accentStyle.Render(constantTagName(raw.Tag))
	prefix := fmt.Sprintf("#%-4d %-14s", idx, tagName)
	switch raw.Tag {
	case classfile.TagUtf8:
		return fmt.Sprintf("%s %q", prefix, raw.Utf8)
	case classfile.TagInteger:
		return fmt.Sprintf("%s %d", prefix, raw.Int32)
	case classfile.TagClass:
		name, _ := c.ConstantPool.ClassName(idx)
		return fmt.Sprintf("%s %s", prefix, name)
	case classfile.TagString:
		s, _ := c.ConstantPool.StringValue(idx)
		return fmt.Sprintf("%s %q", prefix, s)
	case classfile.TagFieldRef:
		ref, _ := c.ConstantPool.FieldRef(idx)
		return fmt.Sprintf("%s %s.%s:%s", prefix, ref.ClassName, ref.Name, ref.Descriptor)
	case classfile.TagMethodRef:
		ref, _ := c.ConstantPool.MethodRef(idx)
		return fmt.Sprintf("%s %s.%s%s", prefix, ref.ClassName, ref.Name, ref.Descriptor)
	case classfile.TagNameAndType:
		name, desc, _ := c.ConstantPool.NameAndType(idx)
		return fmt.Sprintf("%s %s:%s", prefix, name, desc)
	case classfile.TagInvokeDynamic:
		info, _ := c.ConstantPool.InvokeDynamic(idx)
		return fmt.Sprintf("%s bootstrap#%d %s%s", prefix, info.BootstrapMethodAttrIndex, info.Name, info.Descriptor)
	default:
		return prefix
	}
}

func constantTagName(t classfile.Tag) string {
	switch t {
	case classfile.TagUtf8:
		return "Utf8"
	case classfile.TagInteger:
		return "Integer"
	case classfile.TagClass:
		return "Class"
	case classfile.TagString:
		return "String"
	case classfile.TagFieldRef:
		return "FieldRef"
	case classfile.TagMethodRef:
		return "MethodRef"
	case classfile.TagNameAndType:
		return "NameAndType"
	case classfile.TagMethodHandle:
		return "MethodHandle"
	case classfile.TagInvokeDynamic:
		return "InvokeDynamic"
	default:
		return "Unknown"
	}
}

func renderFields(c *classfile.ClassFile) string {
	var b strings.Builder
	fmt.Fprintln(&b, headingStyle.Render("fields"))
	for _, f := range c.Fields {
		fmt.Fprintf(&b, "  %s %s\n", f.Name, mutedStyle.Render(f.Descriptor))
	}
	return b.String()
}

func renderMethods(c *classfile.ClassFile) string {
	var b strings.Builder
	fmt.Fprintln(&b, headingStyle.Render("methods"))
	for _, m := range c.Methods {
		if m.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "  %s%s\n", accentStyle.Render(m.Name), mutedStyle.Render(m.Descriptor))
		if m.Native {
			fmt.Fprintln(&b, mutedStyle.Render("    (native)"))
			continue
		}
		for pc := 0; pc < len(m.Code.Bytes); pc++ {
			op := m.Code.Bytes[pc]
			fmt.Fprintf(&b, "    %4d: %s\n", pc, mutedStyle.Render(interp.Mnemonic(op)))
		}
	}
	return b.String()
}
