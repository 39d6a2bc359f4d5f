// Package overload fornece o adapter HTTP (net/http) da proteção contra sobrecarga.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: o Protector (decisão admit/deny, regra de novos convidados) sem net/http
//   - infra: implementações concretas (token bucket, registro de limiters, estatísticas)
//   - overload (este pacote): middleware HTTP + classificação guest/bot + tradução para status/headers
//
// Fluxo no gateway:
//
//   1) Usuário autenticado passa direto
//   2) Classifica o request (guest ou bot)
//   3) Chama a camada application para obter o veredito
//   4) Guest sem cookie de sessão em sub-request pode ser barrado (ForbidNewGuest)
//   5) Se bloqueado, responde 429; se permitido, chama o próximo handler (ex: reverse proxy)
//
// O motor não enfileira nem atrasa requests: é um portão binário e imediato.
package overload
