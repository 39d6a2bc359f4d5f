// Package domain define contratos e tipos de domínio da proteção contra sobrecarga:
// classificação (guest/bot), escopos, tiers, o registro de limiters e estatísticas.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de decisão
// de detalhes de infraestrutura.
package domain
