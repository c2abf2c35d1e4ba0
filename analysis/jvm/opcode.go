// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jvm

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Opcode is a JVM instruction opcode
type Opcode int

// Opcodes used by the analysis. Opcodes that are not listed still decode, they only carry no def-use information.
const (
	Nop        Opcode = 0
	AconstNull Opcode = 1
	IconstM1   Opcode = 2
	Iconst0    Opcode = 3
	Iconst5    Opcode = 8
	Lconst0    Opcode = 9
	Dconst1    Opcode = 15
	Bipush     Opcode = 16
	Sipush     Opcode = 17
	Ldc        Opcode = 18
	LdcW       Opcode = 19
	Ldc2W      Opcode = 20

	Iload  Opcode = 21
	Lload  Opcode = 22
	Fload  Opcode = 23
	Dload  Opcode = 24
	Aload  Opcode = 25
	Iload0 Opcode = 26
	Aload3 Opcode = 45

	Iaload Opcode = 46
	Saload Opcode = 53

	Istore  Opcode = 54
	Lstore  Opcode = 55
	Fstore  Opcode = 56
	Dstore  Opcode = 57
	Astore  Opcode = 58
	Istore0 Opcode = 59
	Astore3 Opcode = 78

	Iastore Opcode = 79
	Sastore Opcode = 86

	Pop  Opcode = 87
	Dup  Opcode = 89
	Iadd Opcode = 96
	Iinc Opcode = 132

	Ifeq         Opcode = 153
	IfIcmplt     Opcode = 161
	IfIcmpge     Opcode = 162
	IfAcmpne     Opcode = 166
	Goto         Opcode = 167
	Jsr          Opcode = 168
	Ret          Opcode = 169
	Tableswitch  Opcode = 170
	Lookupswitch Opcode = 171

	Ireturn Opcode = 172
	Lreturn Opcode = 173
	Freturn Opcode = 174
	Dreturn Opcode = 175
	Areturn Opcode = 176
	Return  Opcode = 177

	Getstatic       Opcode = 178
	Putstatic       Opcode = 179
	Getfield        Opcode = 180
	Putfield        Opcode = 181
	Invokevirtual   Opcode = 182
	Invokespecial   Opcode = 183
	Invokestatic    Opcode = 184
	Invokeinterface Opcode = 185
	Invokedynamic   Opcode = 186
	New             Opcode = 187
	Athrow          Opcode = 191
)

var mnemonics = map[Opcode]string{
	Nop: "NOP", AconstNull: "ACONST_NULL", IconstM1: "ICONST_M1", 3: "ICONST_0", 4: "ICONST_1", 5: "ICONST_2",
	6: "ICONST_3", 7: "ICONST_4", Iconst5: "ICONST_5", Lconst0: "LCONST_0", 10: "LCONST_1", 11: "FCONST_0",
	12: "FCONST_1", 13: "FCONST_2", 14: "DCONST_0", Dconst1: "DCONST_1", Bipush: "BIPUSH", Sipush: "SIPUSH",
	Ldc: "LDC", LdcW: "LDC_W", Ldc2W: "LDC2_W",
	Iload: "ILOAD", Lload: "LLOAD", Fload: "FLOAD", Dload: "DLOAD", Aload: "ALOAD",
	Iaload: "IALOAD", 47: "LALOAD", 48: "FALOAD", 49: "DALOAD", 50: "AALOAD", 51: "BALOAD", 52: "CALOAD",
	Saload: "SALOAD",
	Istore: "ISTORE", Lstore: "LSTORE", Fstore: "FSTORE", Dstore: "DSTORE", Astore: "ASTORE",
	Iastore: "IASTORE", 80: "LASTORE", 81: "FASTORE", 82: "DASTORE", 83: "AASTORE", 84: "BASTORE",
	85: "CASTORE", Sastore: "SASTORE",
	Pop: "POP", 88: "POP2", Dup: "DUP", 90: "DUP_X1", 91: "DUP_X2", 92: "DUP2", 93: "DUP2_X1", 94: "DUP2_X2",
	95: "SWAP", Iadd: "IADD", 97: "LADD", 98: "FADD", 99: "DADD", 100: "ISUB", 104: "IMUL", 108: "IDIV",
	Iinc: "IINC",
	Ifeq: "IFEQ", 154: "IFNE", 155: "IFLT", 156: "IFGE", 157: "IFGT", 158: "IFLE", 159: "IF_ICMPEQ",
	160: "IF_ICMPNE", IfIcmplt: "IF_ICMPLT", IfIcmpge: "IF_ICMPGE", 163: "IF_ICMPGT", 164: "IF_ICMPLE",
	165: "IF_ACMPEQ", IfAcmpne: "IF_ACMPNE", Goto: "GOTO", Jsr: "JSR", Ret: "RET",
	Tableswitch: "TABLESWITCH", Lookupswitch: "LOOKUPSWITCH",
	Ireturn: "IRETURN", Lreturn: "LRETURN", Freturn: "FRETURN", Dreturn: "DRETURN", Areturn: "ARETURN", Return: "RETURN",
	Getstatic: "GETSTATIC", Putstatic: "PUTSTATIC", Getfield: "GETFIELD", Putfield: "PUTFIELD",
	Invokevirtual: "INVOKEVIRTUAL", Invokespecial: "INVOKESPECIAL", Invokestatic: "INVOKESTATIC",
	Invokeinterface: "INVOKEINTERFACE", Invokedynamic: "INVOKEDYNAMIC", New: "NEW", 188: "NEWARRAY",
	189: "ANEWARRAY", 190: "ARRAYLENGTH", Athrow: "ATHROW", 192: "CHECKCAST", 193: "INSTANCEOF",
	198: "IFNULL", 199: "IFNONNULL",
}

var byMnemonic = func() map[string]Opcode {
	m := make(map[string]Opcode, len(mnemonics)+40)
	for op, s := range mnemonics {
		m[s] = op
	}
	for i, p := range []string{"I", "L", "F", "D", "A"} {
		for n := 0; n < 4; n++ {
			load := Iload0 + Opcode(4*i+n)
			store := Istore0 + Opcode(4*i+n)
			m[fmt.Sprintf("%sLOAD_%d", p, n)] = load
			m[fmt.Sprintf("%sSTORE_%d", p, n)] = store
		}
	}
	return m
}()

// ParseOpcode returns the opcode of a mnemonic (e.g. "ILOAD_1") or of a decimal number
func ParseOpcode(s string) (Opcode, error) {
	if op, ok := byMnemonic[strings.ToUpper(s)]; ok {
		return op, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 255 {
		return 0, fmt.Errorf("unknown opcode %q", s)
	}
	return Opcode(n), nil
}

func (op Opcode) String() string {
	if s, ok := mnemonics[op]; ok {
		return s
	}
	if Iload0 <= op && op <= Aload3 {
		x := op - Iload0
		return fmt.Sprintf("%sLOAD_%d", "ILFDA"[x/4:x/4+1], x%4)
	}
	if Istore0 <= op && op <= Astore3 {
		x := op - Istore0
		return fmt.Sprintf("%sSTORE_%d", "ILFDA"[x/4:x/4+1], x%4)
	}
	return "OP_" + strconv.Itoa(int(op))
}

// IsLoad returns true for the instructions that read a local variable slot
func (op Opcode) IsLoad() bool {
	return (Iload <= op && op <= Aload) || (Iload0 <= op && op <= Aload3)
}

// IsStore returns true for the instructions that write a local variable slot
func (op Opcode) IsStore() bool {
	return (Istore <= op && op <= Astore) || (Istore0 <= op && op <= Astore3)
}

// IsReturn returns true for IRETURN..RETURN
func (op Opcode) IsReturn() bool {
	return Ireturn <= op && op <= Return
}

// IsInvoke returns true for the method invocation instructions
func (op Opcode) IsInvoke() bool {
	return Invokevirtual <= op && op <= Invokedynamic
}

// IsFieldRead returns true for GETFIELD and GETSTATIC
func (op Opcode) IsFieldRead() bool {
	return op == Getfield || op == Getstatic
}

// IsFieldWrite returns true for PUTFIELD and PUTSTATIC
func (op Opcode) IsFieldWrite() bool {
	return op == Putfield || op == Putstatic
}

// IsArrayStore returns true for the instructions that write an array element
func (op Opcode) IsArrayStore() bool {
	return Iastore <= op && op <= Sastore
}

// IsConstant returns true for the instructions that push a constant on the operand stack
func (op Opcode) IsConstant() bool {
	return AconstNull <= op && op <= Ldc2W
}

// ImplicitSlot returns the slot encoded in the opcode of the xLOAD_n and xSTORE_n instructions
func (op Opcode) ImplicitSlot() (int, bool) {
	switch {
	case Iload0 <= op && op <= Aload3:
		return int(op-Iload0) % 4, true
	case Istore0 <= op && op <= Astore3:
		return int(op-Istore0) % 4, true
	}
	return 0, false
}

// MarshalYAML writes opcodes as mnemonics
func (op Opcode) MarshalYAML() (interface{}, error) {
	return op.String(), nil
}

// UnmarshalYAML accepts mnemonics and numbers
func (op *Opcode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: opcode must be a scalar", value.Line)
	}
	x, err := ParseOpcode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*op = x
	return nil
}

// UnmarshalJSON accepts mnemonics and numbers
func (op *Opcode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	x, err := ParseOpcode(s)
	if err != nil {
		return err
	}
	*op = x
	return nil
}
