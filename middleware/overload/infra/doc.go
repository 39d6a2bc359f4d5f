// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - WindowLimiter: token bucket usando golang.org/x/time/rate
//   - NewRegistry/NewSnapshot: os seis slots de limiter a partir da configuração
//   - MemoryStatsStore, RedisStatsStore, PrometheusStatsStore: estatísticas de admissão
package infra
