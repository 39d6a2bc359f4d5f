// utilitário pequeno para formatação de valores numéricos em headers.
//    Evita puxar fmt só para formatação simples

package overload

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }
