// Package application contém o caso de uso de admissão: o Protector.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Protector.DenyGuest(nil) retorna true quando o request deve ser rejeitado.
package application
