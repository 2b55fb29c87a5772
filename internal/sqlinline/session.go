package sqlinline

const QCreateSessionTable = `--sql 3f0c6a52-8d0e-4b8e-9a7e-51c2d7e0b6a1
create table if not exists session_kv (
  namespace  text not null,
  key        text not null,
  value      text not null,
  updated_at timestamptz not null default now(),
  primary key (namespace, key)
);
`

const QSelectSessionValue = `--sql 8b6f1d2e-47c3-4a59-b0de-2f7a9c1e5d34
select value
from session_kv
where namespace = $1::text and key = $2::text
limit 1;
`

const QUpsertSessionValue = `--sql c41e9a07-5b2d-4f6e-8c13-9d0a7b2e6f58
insert into session_kv(namespace, key, value, updated_at)
values ($1::text, $2::text, $3::text, now())
on conflict (namespace, key)
do update set value = excluded.value, updated_at = now();
`

const QDeleteSessionValue = `--sql e7d2b5c8-1a4f-4e93-a6b0-3c8f5d9e2a17
delete from session_kv
where namespace = $1::text and key = $2::text;
`
